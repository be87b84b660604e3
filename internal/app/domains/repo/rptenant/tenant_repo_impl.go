package rptenant

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/entity"
)

// TenantRepositoryImpl 租户仓储实现（MySQL）
type TenantRepositoryImpl struct {
	db *gorm.DB
}

// NewTenantRepository 创建租户仓储实例
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &TenantRepositoryImpl{db: db}
}

// GetByID 根据ID查询租户
func (r *TenantRepositoryImpl) GetByID(ctx context.Context, tenantID string) (*ettenant.Tenant, error) {
	var po entity.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", tenantID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrTenantNotFound
		}
		return nil, errorx.WrapStorage("get tenant", err)
	}

	return &ettenant.Tenant{
		ID:        po.ID,
		Name:      po.Name,
		Slug:      po.Slug,
		Status:    ettenant.TenantStatus(po.Status),
		SiteURL:   po.SiteURL,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}, nil
}

// UpdateStatus 更新租户生命周期状态
func (r *TenantRepositoryImpl) UpdateStatus(ctx context.Context, tenantID string, status ettenant.TenantStatus) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return errorx.WrapStorage("update tenant status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errorx.ErrTenantNotFound
	}
	return nil
}

// UpdateSiteURL 记录开通完成的站点地址
func (r *TenantRepositoryImpl) UpdateSiteURL(ctx context.Context, tenantID string, siteURL string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{
			"site_url":   siteURL,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return errorx.WrapStorage("update tenant site url", result.Error)
	}
	if result.RowsAffected == 0 {
		return errorx.ErrTenantNotFound
	}
	return nil
}

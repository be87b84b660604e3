package rptenant

import (
	"context"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
)

// TenantRepository 租户仓储接口
// 编排器只读写生命周期状态和站点地址，其余租户字段由外部系统维护
type TenantRepository interface {
	// GetByID 根据ID查询租户
	GetByID(ctx context.Context, tenantID string) (*ettenant.Tenant, error)

	// UpdateStatus 更新租户生命周期状态
	UpdateStatus(ctx context.Context, tenantID string, status ettenant.TenantStatus) error

	// UpdateSiteURL 记录开通完成的站点地址
	UpdateSiteURL(ctx context.Context, tenantID string, siteURL string) error
}

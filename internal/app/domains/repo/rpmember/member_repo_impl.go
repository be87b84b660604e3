package rpmember

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/entity"
)

// MemberRepositoryImpl 成员关系仓储实现（MySQL）
type MemberRepositoryImpl struct {
	db *gorm.DB
}

// NewMemberRepository 创建成员关系仓储实例
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &MemberRepositoryImpl{db: db}
}

// Role 查询用户在租户内的角色
func (r *MemberRepositoryImpl) Role(ctx context.Context, tenantID, userID string) (ettenant.Role, error) {
	var po entity.UserTenant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.ErrNotMember
		}
		return "", errorx.WrapStorage("get member role", err)
	}
	return ettenant.Role(po.Role), nil
}

package rpmember

import (
	"context"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
)

// MemberRepository 租户成员关系查询接口（鉴权协作方）
// 编排器只消费角色信息，成员关系的写入由账号体系维护
type MemberRepository interface {
	// Role 查询用户在租户内的角色，非成员返回 errorx.ErrNotMember
	Role(ctx context.Context, tenantID, userID string) (ettenant.Role, error)
}

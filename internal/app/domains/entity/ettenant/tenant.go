package ettenant

import "time"

// TenantStatus 租户生命周期状态
type TenantStatus string

const (
	StatusPending      TenantStatus = "pending"
	StatusProvisioning TenantStatus = "provisioning"
	StatusActive       TenantStatus = "active"
	StatusSuspended    TenantStatus = "suspended"
	StatusCancelled    TenantStatus = "cancelled"
)

// Role 用户在租户内的角色
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanManageJobs 是否允许创建/重试/取消任务
func (r Role) CanManageJobs() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Tenant 租户实体
type Tenant struct {
	ID        string       // 租户ID (UUID)
	Name      string       // 租户名称
	Slug      string       // 站点子域名标识
	Status    TenantStatus // 生命周期状态
	SiteURL   string       // 开通完成后的站点地址
	CreatedAt time.Time
	UpdatedAt time.Time
}

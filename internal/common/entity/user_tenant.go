package entity

import "time"

// UserTenant 用户-租户成员关系
type UserTenant struct {
	UserID    string    `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	TenantID  string    `gorm:"column:tenant_id;primaryKey;type:varchar(64)"`
	Role      string    `gorm:"column:role;type:varchar(16);not null;default:'member'"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (UserTenant) TableName() string {
	return "user_tenants"
}

package entity

import "time"

// Tenant 租户实体
type Tenant struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Slug      string    `gorm:"column:slug;type:varchar(100);uniqueIndex:uk_slug;not null"`
	Status    string    `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	SiteURL   string    `gorm:"column:site_url;type:varchar(500)"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}

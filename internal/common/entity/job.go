package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ProvisioningJob 开通任务实体
type ProvisioningJob struct {
	// 基础字段
	ID       string `gorm:"column:id;primaryKey;type:varchar(64)"`
	TenantID string `gorm:"column:tenant_id;type:varchar(64);not null;index:idx_tenant_created"`
	JobType  string `gorm:"column:job_type;type:varchar(32);not null"`

	// 执行状态
	Status   string         `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	Progress int            `gorm:"column:progress;not null;default:0"`
	Message  string         `gorm:"column:message;type:varchar(500)"`
	Error    string         `gorm:"column:error;type:text"`
	Result   datatypes.JSON `gorm:"column:result;type:json"`

	// 时间戳
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index:idx_tenant_created"`
}

// TableName 指定表名
func (ProvisioningJob) TableName() string {
	return "provisioning_jobs"
}

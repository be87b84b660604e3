package rpjob

import (
	"context"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
)

// JobRepository 任务仓储接口，MySQL 实现见 job_repo_impl.go
type JobRepository interface {
	// Create 落库新任务
	Create(ctx context.Context, job *etjob.Job) error

	// GetByID 根据ID查询任务
	GetByID(ctx context.Context, jobID string) (*etjob.Job, error)

	// List 按租户分页查询，created_at 倒序，返回总数
	List(ctx context.Context, tenantID string, limit, offset int) ([]*etjob.Job, int64, error)

	// Update 全量更新任务执行字段（status/progress/message/error/timestamps）
	Update(ctx context.Context, job *etjob.Job) error

	// UpdateFromStatus 条件更新：仅当持久化状态仍为 prev 之一时写入
	// 返回 false 表示并发方（Cancel 或另一 Worker）已抢先改写，调用方必须放弃本次写入
	UpdateFromStatus(ctx context.Context, job *etjob.Job, prev ...etjob.JobStatus) (bool, error)
}

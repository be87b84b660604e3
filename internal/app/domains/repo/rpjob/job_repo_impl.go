package rpjob

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/entity"
)

// JobRepositoryImpl 任务仓储实现（MySQL）
type JobRepositoryImpl struct {
	db *gorm.DB
}

// NewJobRepository 创建任务仓储实例
func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

// Create 落库新任务，将领域对象转换为 GORM 模型
func (r *JobRepositoryImpl) Create(ctx context.Context, job *etjob.Job) error {
	po := r.toGormModel(job)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return errorx.WrapStorage("create job", err)
	}
	return nil
}

// GetByID 根据ID查询任务
func (r *JobRepositoryImpl) GetByID(ctx context.Context, jobID string) (*etjob.Job, error) {
	var po entity.ProvisioningJob
	err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrJobNotFound
		}
		return nil, errorx.WrapStorage("get job", err)
	}
	return r.toDomainModel(&po), nil
}

// List 按租户分页查询任务列表
func (r *JobRepositoryImpl) List(ctx context.Context, tenantID string, limit, offset int) ([]*etjob.Job, int64, error) {
	var total int64
	var pos []entity.ProvisioningJob

	query := r.db.WithContext(ctx).Model(&entity.ProvisioningJob{}).Where("tenant_id = ?", tenantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errorx.WrapStorage("count jobs", err)
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, errorx.WrapStorage("list jobs", err)
	}

	jobs := make([]*etjob.Job, 0, len(pos))
	for i := range pos {
		jobs = append(jobs, r.toDomainModel(&pos[i]))
	}
	return jobs, total, nil
}

// Update 全量更新任务执行字段
func (r *JobRepositoryImpl) Update(ctx context.Context, job *etjob.Job) error {
	err := r.db.WithContext(ctx).
		Model(&entity.ProvisioningJob{}).
		Where("id = ?", job.ID).
		Updates(r.executionFields(job)).Error
	if err != nil {
		return errorx.WrapStorage("update job", err)
	}
	return nil
}

// UpdateFromStatus 条件更新，WHERE status IN (prev) 保证读-改-写不被并发方覆盖
func (r *JobRepositoryImpl) UpdateFromStatus(ctx context.Context, job *etjob.Job, prev ...etjob.JobStatus) (bool, error) {
	statuses := make([]string, 0, len(prev))
	for _, s := range prev {
		statuses = append(statuses, string(s))
	}

	result := r.db.WithContext(ctx).
		Model(&entity.ProvisioningJob{}).
		Where("id = ? AND status IN ?", job.ID, statuses).
		Updates(r.executionFields(job))
	if result.Error != nil {
		return false, errorx.WrapStorage("update job", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// executionFields Worker/Dispatcher 允许改写的字段集合
// 显式列出可变字段，避免 gorm 零值跳过导致 error/timestamps 清不掉
func (r *JobRepositoryImpl) executionFields(job *etjob.Job) map[string]interface{} {
	return map[string]interface{}{
		"status":       string(job.Status),
		"progress":     job.Progress,
		"message":      job.Message,
		"error":        job.Error,
		"result":       marshalResult(job.Result),
		"started_at":   job.StartedAt,
		"completed_at": job.CompletedAt,
	}
}

// marshalResult 任务产出序列化为 JSON 列，nil 产出落 NULL
func marshalResult(result *etjob.JobResult) datatypes.JSON {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// unmarshalResult JSON 列还原任务产出，脏数据容忍为 nil
func unmarshalResult(raw datatypes.JSON) *etjob.JobResult {
	if len(raw) == 0 {
		return nil
	}
	var result etjob.JobResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

// toGormModel 领域对象转换为 GORM 模型
func (r *JobRepositoryImpl) toGormModel(job *etjob.Job) *entity.ProvisioningJob {
	return &entity.ProvisioningJob{
		ID:          job.ID,
		TenantID:    job.TenantID,
		JobType:     string(job.JobType),
		Status:      string(job.Status),
		Progress:    job.Progress,
		Message:     job.Message,
		Error:       job.Error,
		Result:      marshalResult(job.Result),
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		CreatedAt:   job.CreatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func (r *JobRepositoryImpl) toDomainModel(po *entity.ProvisioningJob) *etjob.Job {
	return &etjob.Job{
		ID:          po.ID,
		TenantID:    po.TenantID,
		JobType:     etjob.JobType(po.JobType),
		Status:      etjob.JobStatus(po.Status),
		Progress:    po.Progress,
		Message:     po.Message,
		Error:       po.Error,
		Result:      unmarshalResult(po.Result),
		StartedAt:   po.StartedAt,
		CompletedAt: po.CompletedAt,
		CreatedAt:   po.CreatedAt,
	}
}

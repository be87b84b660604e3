package etjob

import (
	"errors"
	"fmt"
	"time"
)

// 错误定义
var (
	ErrInvalidJobID     = errors.New("job ID cannot be empty")
	ErrInvalidTenantID  = errors.New("tenant ID cannot be empty")
	ErrUnknownJobType   = errors.New("unknown job type")
	ErrNotRunning       = errors.New("job is not running")
	ErrProgressRollback = errors.New("progress cannot decrease")
)

// JobStatus 任务状态
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// IsTerminal 是否终态
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobType 任务类型（封闭集合）
type JobType string

const (
	TypeCreateSite JobType = "create_site"
	TypeDeleteSite JobType = "delete_site"
	TypeBackupSite JobType = "backup_site"
)

// Valid 校验任务类型合法性
func (t JobType) Valid() bool {
	switch t {
	case TypeCreateSite, TypeDeleteSite, TypeBackupSite:
		return true
	}
	return false
}

// JobResult 任务产出，仅成功终态非空，落库为 JSON 列
type JobResult struct {
	SiteURL string `json:"site_url,omitempty"`
}

// Job 开通任务聚合根（领域对象）
// 状态机：pending → running → {completed, failed}
// failed/completed → pending 仅通过显式 Retry 触发
type Job struct {
	ID          string     // 任务ID (UUID)
	TenantID    string     // 租户ID
	JobType     JobType    // 任务类型
	Status      JobStatus  // 任务状态
	Progress    int        // 进度 [0,100]
	Message     string     // 当前步骤描述
	Error       string     // 错误信息（仅 failed 态非空）
	Result      *JobResult // 任务产出（仅 completed 态非空）
	StartedAt   *time.Time // 本次执行开始时间
	CompletedAt *time.Time // 本次执行结束时间
	CreatedAt   time.Time  // 创建时间
}

// NewJob 创建任务（工厂方法），初始态 pending/progress 0/message "Queued"
func NewJob(id, tenantID string, jobType JobType) (*Job, error) {
	if id == "" {
		return nil, ErrInvalidJobID
	}
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}
	if !jobType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	return &Job{
		ID:        id,
		TenantID:  tenantID,
		JobType:   jobType,
		Status:    StatusPending,
		Progress:  0,
		Message:   "Queued",
		CreatedAt: time.Now(),
	}, nil
}

// Dispatchable 是否允许被 Worker 接收执行
// pending 和 failed 是仅有的可重新投递状态；其余状态说明消息重复投递，需跳过
func (j *Job) Dispatchable() bool {
	return j.Status == StatusPending || j.Status == StatusFailed
}

// Start 进入执行态（领域行为）
func (j *Job) Start(now time.Time) error {
	if !j.Dispatchable() {
		return fmt.Errorf("cannot start job in status %s", j.Status)
	}
	j.Status = StatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
	j.Progress = 10
	j.Message = "Started"
	j.Error = ""
	j.Result = nil
	return nil
}

// Checkpoint 记录中间进度，仅执行态可用，进度单调不减
func (j *Job) Checkpoint(progress int, message string) error {
	if j.Status != StatusRunning {
		return ErrNotRunning
	}
	if progress < j.Progress {
		return fmt.Errorf("%w: %d < %d", ErrProgressRollback, progress, j.Progress)
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
	j.Message = message
	return nil
}

// Complete 执行成功，进入终态 completed
func (j *Job) Complete(now time.Time) error {
	if j.Status != StatusRunning {
		return ErrNotRunning
	}
	j.Status = StatusCompleted
	j.Progress = 100
	j.CompletedAt = &now
	j.Message = "Completed"
	j.Error = ""
	return nil
}

// Fail 执行失败，进入终态 failed，错误信息落到 Error 字段
func (j *Job) Fail(now time.Time, errMsg string) {
	if errMsg == "" {
		errMsg = "unknown error"
	}
	j.Status = StatusFailed
	j.CompletedAt = &now
	j.Message = "Failed"
	j.Error = errMsg
	j.Result = nil
}

// ResetForRetry 重置为待执行态（仅终态任务可重试）
func (j *Job) ResetForRetry() error {
	if !j.Status.IsTerminal() {
		return errors.New("only failed/completed jobs can be retried")
	}
	j.Status = StatusPending
	j.Progress = 0
	j.Message = "Queued"
	j.Error = ""
	j.Result = nil
	j.StartedAt = nil
	j.CompletedAt = nil
	return nil
}

// Cancel 软取消：标记终态但不中断执行中的 Worker
// 终态任务取消为幂等空操作，返回 false
func (j *Job) Cancel() bool {
	if j.Status.IsTerminal() {
		return false
	}
	j.Status = StatusFailed
	j.Error = "Cancelled by user"
	j.Message = "Cancelled"
	j.Progress = 0
	return true
}

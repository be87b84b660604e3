package response

import (
	"time"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
)

// JobResultResponse 任务产出
type JobResultResponse struct {
	SiteURL string `json:"site_url,omitempty"`
}

// JobResponse 任务响应
type JobResponse struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	JobType     string             `json:"job_type"`
	Status      string             `json:"status"`
	Progress    int                `json:"progress"`
	Message     string             `json:"message,omitempty"`
	Error       string             `json:"error,omitempty"`
	Result      *JobResultResponse `json:"result,omitempty"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// FromJobEntity 领域对象转换为响应
func FromJobEntity(job *etjob.Job) *JobResponse {
	var result *JobResultResponse
	if job.Result != nil {
		result = &JobResultResponse{SiteURL: job.Result.SiteURL}
	}
	return &JobResponse{
		ID:          job.ID,
		TenantID:    job.TenantID,
		JobType:     string(job.JobType),
		Status:      string(job.Status),
		Progress:    job.Progress,
		Message:     job.Message,
		Error:       job.Error,
		Result:      result,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		CreatedAt:   job.CreatedAt,
	}
}

// FromJobEntities 批量转换
func FromJobEntities(jobs []*etjob.Job) []*JobResponse {
	out := make([]*JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJobEntity(job))
	}
	return out
}

// Pagination 分页信息
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs       []*JobResponse `json:"jobs"`
	Pagination Pagination     `json:"pagination"`
}

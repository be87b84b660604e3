package request

import "github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"

// CreateJobRequest 创建任务请求
type CreateJobRequest struct {
	JobType string `json:"job_type" binding:"required,oneof=create_site delete_site backup_site"`
}

// ToJobType 转换为领域任务类型
func (r *CreateJobRequest) ToJobType() etjob.JobType {
	return etjob.JobType(r.JobType)
}

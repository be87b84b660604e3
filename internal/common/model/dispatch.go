package model

// DispatchMessage 任务投递消息（队列信封）
// 只携带任务ID：Worker 执行前总是回读存储中的最新任务状态，
// 消息内容过期不会导致错误执行
type DispatchMessage struct {
	JobID string `json:"job_id"`
}

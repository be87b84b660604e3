package mqx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc 业务处理函数类型
// 参数：ctx 上下文，job 原始 lmstfy Job
// 返回：JobResp 处理结果，决定消息的 ACK 动作
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus 消息处理结果状态
type JobRespStatus int

const (
	// JobRespStatusSuccess 处理完成（任务已落终态），ACK 消息
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRetry 临时故障（如存储不可用），不 ACK，等待 TTR 到期重新投递
	JobRespStatusRetry
	// JobRespStatusDrop 消息不可处理（格式非法/任务不存在/重复投递），ACK 后丢弃
	JobRespStatusDrop
)

// JobResp 消息处理结果
type JobResp struct {
	Action JobRespStatus // 处理动作
	Data   []byte        // 响应数据（可选，用于日志）
}

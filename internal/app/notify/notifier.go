package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
)

// Publisher 状态事件发布通道（Redis Pub/Sub 适配）
type Publisher interface {
	Publish(ctx context.Context, channel string, message string) error
}

// 事件类型（实时推送网关按 event 字段分发给前端）
const (
	EventStatusUpdate    = "status:update"
	EventStatusCompleted = "status:completed"
	EventStatusFailed    = "status:failed"
)

// StatusEvent 状态事件载荷
type StatusEvent struct {
	Event    string `json:"event"`
	TenantID string `json:"tenant_id"`
	JobID    string `json:"job_id"`
	Status   string `json:"status,omitempty"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	SiteURL  string `json:"site_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Notifier 状态通知器：把任务状态变化扇出给实时订阅方
// 纯旁路观察：发布失败只记日志，绝不影响任务状态流转
type Notifier struct {
	publisher Publisher
	logger    logger.Logger
}

// NewNotifier 创建通知器实例
func NewNotifier(publisher Publisher, log logger.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		logger:    log,
	}
}

// TenantChannel 租户状态频道命名规则
func TenantChannel(tenantID string) string {
	return fmt.Sprintf("provisioning:status:%s", tenantID)
}

// ResultChannel 任务结果频道命名规则（Smart Wait 订阅此频道）
func ResultChannel(jobID string) string {
	return fmt.Sprintf("provisioning:result:%s", jobID)
}

// PublishStatus 发布进度更新事件
func (n *Notifier) PublishStatus(ctx context.Context, tenantID, jobID, status string, progress int, message string) {
	n.emit(ctx, false, &StatusEvent{
		Event:    EventStatusUpdate,
		TenantID: tenantID,
		JobID:    jobID,
		Status:   status,
		Progress: progress,
		Message:  message,
	})
}

// PublishCompleted 发布任务完成事件，携带开通出的站点地址
func (n *Notifier) PublishCompleted(ctx context.Context, tenantID, jobID, siteURL string) {
	n.emit(ctx, true, &StatusEvent{
		Event:    EventStatusCompleted,
		TenantID: tenantID,
		JobID:    jobID,
		Status:   "completed",
		Progress: 100,
		SiteURL:  siteURL,
	})
}

// PublishFailed 发布任务失败事件
func (n *Notifier) PublishFailed(ctx context.Context, tenantID, jobID, errMsg string) {
	n.emit(ctx, true, &StatusEvent{
		Event:    EventStatusFailed,
		TenantID: tenantID,
		JobID:    jobID,
		Status:   "failed",
		Error:    errMsg,
	})
}

// emit 序列化并发布事件；terminal 事件额外镜像到任务结果频道
func (n *Notifier) emit(ctx context.Context, terminal bool, event *StatusEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warnf(ctx, "[Notifier] marshal event failed: %v", err)
		return
	}

	if err := n.publisher.Publish(ctx, TenantChannel(event.TenantID), string(payload)); err != nil {
		n.logger.Warnf(ctx, "[Notifier] publish to tenant channel failed: job_id=%s, error=%v", event.JobID, err)
	}

	if terminal {
		if err := n.publisher.Publish(ctx, ResultChannel(event.JobID), string(payload)); err != nil {
			n.logger.Warnf(ctx, "[Notifier] publish to result channel failed: job_id=%s, error=%v", event.JobID, err)
		}
	}
}

package mddispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/notify"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/model"
)

// QueuePublisher 投递队列发布接口（lmstfy 适配）
type QueuePublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// ResultSubscriber 结果频道订阅接口（Redis Pub/Sub 适配）
type ResultSubscriber interface {
	Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error)
}

// 投递消息存活时间：超过该窗口仍未被消费的任务交由人工重试
const dispatchTTL = 24 * 60 * 60

// DispatchModule 投递模块
// 职责：
// 1. 把任务ID封装成投递消息发布到固定队列
// 2. Smart Wait：订阅任务结果频道等待终态事件
type DispatchModule struct {
	publisher  QueuePublisher
	subscriber ResultSubscriber
	queueName  string
}

// NewDispatchModule 创建投递模块实例
func NewDispatchModule(publisher QueuePublisher, subscriber ResultSubscriber, queueName string) *DispatchModule {
	return &DispatchModule{
		publisher:  publisher,
		subscriber: subscriber,
		queueName:  queueName,
	}
}

// PublishDispatch 发布任务投递消息
// 信封只带任务ID，Worker 消费时回读存储获取最新状态
func (m *DispatchModule) PublishDispatch(ctx context.Context, jobID string) error {
	payload, err := json.Marshal(&model.DispatchMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("marshal dispatch message failed: %w", err)
	}

	if err := m.publisher.Publish(m.queueName, payload, dispatchTTL, 0); err != nil {
		return errorx.WrapTransport("publish", err)
	}
	return nil
}

// WaitForResult 等待任务终态事件（Smart Wait）
// 超时或订阅失败返回错误，调用方降级为轮询
func (m *DispatchModule) WaitForResult(ctx context.Context, jobID string, timeout time.Duration) (*notify.StatusEvent, error) {
	channel := notify.ResultChannel(jobID)

	payload, err := m.subscriber.Subscribe(ctx, channel, timeout)
	if err != nil {
		return nil, err
	}

	var event notify.StatusEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("unmarshal result event failed: %w", err)
	}

	return &event, nil
}

package framework_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/mqx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/worker/framework"
)

// fakeSource 记录 ACK 调用
type fakeSource struct {
	mu    sync.Mutex
	acked []string
}

func (s *fakeSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	return nil, nil
}

func (s *fakeSource) Ack(queue string, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, jobID)
	return nil
}

func (s *fakeSource) ackedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

func runProcessor(t *testing.T, action mqx.JobRespStatus, msgs []*framework.Message) *fakeSource {
	t.Helper()

	source := &fakeSource{}
	proc := func(ctx context.Context, job *client.Job) *mqx.JobResp {
		return &mqx.JobResp{Action: action}
	}

	cfg := &framework.ProcessorConfig{Concurrency: 1, BufferSize: len(msgs) + 1, Timeout: time.Second}
	p := framework.NewProcessor(cfg, proc, source, &logger.NopLogger{})

	inputChan := make(chan *framework.Message, len(msgs)+1)
	for _, msg := range msgs {
		inputChan <- msg
	}

	require.NoError(t, p.Start(context.Background(), inputChan))

	// Drain 模式保证缓冲中的消息处理完毕后退出
	p.SignalShutdown()
	p.Wait()

	return source
}

func TestProcessor_AckOnSuccess(t *testing.T) {
	msgs := []*framework.Message{{ID: "m-1", Queue: "q", Data: []byte(`{}`)}}
	source := runProcessor(t, mqx.JobRespStatusSuccess, msgs)
	assert.Equal(t, []string{"m-1"}, source.ackedIDs())
}

func TestProcessor_AckOnDrop(t *testing.T) {
	msgs := []*framework.Message{{ID: "m-1", Queue: "q", Data: []byte(`bad`)}}
	source := runProcessor(t, mqx.JobRespStatusDrop, msgs)
	assert.Equal(t, []string{"m-1"}, source.ackedIDs())
}

func TestProcessor_NoAckOnRetry(t *testing.T) {
	msgs := []*framework.Message{{ID: "m-1", Queue: "q", Data: []byte(`{}`)}}
	source := runProcessor(t, mqx.JobRespStatusRetry, msgs)
	assert.Empty(t, source.ackedIDs(), "retry must leave message unacked for TTR redelivery")
}

func TestProcessor_DrainsBufferedMessages(t *testing.T) {
	var msgs []*framework.Message
	for _, id := range []string{"m-1", "m-2", "m-3"} {
		msgs = append(msgs, &framework.Message{ID: id, Queue: "q", Data: []byte(`{}`)})
	}

	source := runProcessor(t, mqx.JobRespStatusSuccess, msgs)
	assert.Len(t, source.ackedIDs(), 3, "all buffered messages must be processed before exit")
}

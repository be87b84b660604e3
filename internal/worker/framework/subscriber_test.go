package framework_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/worker/framework"
)

// countingSource 产出固定消息，记录拉取次数
type countingSource struct {
	ch chan *framework.Message
}

func (s *countingSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

func (s *countingSource) Ack(queue string, jobID string) error { return nil }

func TestSubscriber_ForwardsMessages(t *testing.T) {
	source := &countingSource{ch: make(chan *framework.Message, 2)}
	source.ch <- &framework.Message{ID: "m-1", Queue: "q", Data: []byte(`{}`)}
	source.ch <- &framework.Message{ID: "m-2", Queue: "q", Data: []byte(`{}`)}

	cfg := &framework.SubscriberConfig{
		QueueName:    "q",
		Concurrency:  1,
		Timeout:      10 * time.Millisecond,
		TTR:          time.Minute,
		Rate:         time.Millisecond,
		ErrorBackoff: time.Millisecond,
	}
	s := framework.NewSubscriber(cfg, source, &logger.NopLogger{})

	inputChan := make(chan *framework.Message, 4)
	require.NoError(t, s.Start(context.Background(), inputChan))

	var got []string
	for len(got) < 2 {
		select {
		case msg := <-inputChan:
			got = append(got, msg.ID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for forwarded messages")
		}
	}
	assert.ElementsMatch(t, []string{"m-1", "m-2"}, got)

	s.Stop()
	s.Wait()
}

func TestSubscriber_StopExitsPullLoops(t *testing.T) {
	source := &countingSource{ch: make(chan *framework.Message)}

	cfg := &framework.SubscriberConfig{
		QueueName:    "q",
		Concurrency:  2,
		Timeout:      10 * time.Millisecond,
		TTR:          time.Minute,
		Rate:         time.Millisecond,
		ErrorBackoff: time.Millisecond,
	}
	s := framework.NewSubscriber(cfg, source, &logger.NopLogger{})

	inputChan := make(chan *framework.Message, 1)
	require.NoError(t, s.Start(context.Background(), inputChan))

	s.Stop()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop in time")
	}
}

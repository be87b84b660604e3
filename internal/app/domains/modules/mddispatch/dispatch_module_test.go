package mddispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/modules/mddispatch"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/notify"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/model"
)

type recordingQueue struct {
	queue string
	data  []byte
	ttl   uint32
	delay uint32
	err   error
}

func (q *recordingQueue) Publish(queue string, data []byte, ttl, delay uint32) error {
	if q.err != nil {
		return q.err
	}
	q.queue = queue
	q.data = data
	q.ttl = ttl
	q.delay = delay
	return nil
}

type cannedSubscriber struct {
	channel string
	payload string
	err     error
}

func (s *cannedSubscriber) Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error) {
	s.channel = channel
	if s.err != nil {
		return "", s.err
	}
	return s.payload, nil
}

func TestDispatchModule_PublishDispatch(t *testing.T) {
	queue := &recordingQueue{}
	m := mddispatch.NewDispatchModule(queue, &cannedSubscriber{}, "provisioning_jobs")

	require.NoError(t, m.PublishDispatch(context.Background(), "job-1"))

	assert.Equal(t, "provisioning_jobs", queue.queue)
	assert.Zero(t, queue.delay)
	assert.NotZero(t, queue.ttl)

	var msg model.DispatchMessage
	require.NoError(t, json.Unmarshal(queue.data, &msg))
	assert.Equal(t, "job-1", msg.JobID)
}

func TestDispatchModule_PublishDispatchFailure(t *testing.T) {
	queue := &recordingQueue{err: errors.New("lmstfy unavailable")}
	m := mddispatch.NewDispatchModule(queue, &cannedSubscriber{}, "provisioning_jobs")

	err := m.PublishDispatch(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, errorx.IsTransport(err))
}

func TestDispatchModule_WaitForResult(t *testing.T) {
	event := &notify.StatusEvent{
		Event:  notify.EventStatusCompleted,
		JobID:  "job-1",
		Status: "completed",
	}
	payload, _ := json.Marshal(event)

	sub := &cannedSubscriber{payload: string(payload)}
	m := mddispatch.NewDispatchModule(&recordingQueue{}, sub, "provisioning_jobs")

	got, err := m.WaitForResult(context.Background(), "job-1", time.Second)
	require.NoError(t, err)

	assert.Equal(t, notify.ResultChannel("job-1"), sub.channel)
	assert.Equal(t, notify.EventStatusCompleted, got.Event)
	assert.Equal(t, "completed", got.Status)
}

func TestDispatchModule_WaitForResultTimeout(t *testing.T) {
	sub := &cannedSubscriber{err: context.DeadlineExceeded}
	m := mddispatch.NewDispatchModule(&recordingQueue{}, sub, "provisioning_jobs")

	_, err := m.WaitForResult(context.Background(), "job-1", time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/backoffice/admin-system/internal/jobs"
)

type stubPurger struct {
	days    []int
	deleted int64
	err     error
}

func (s *stubPurger) Clear(ctx context.Context, days int) (int64, error) {
	s.days = append(s.days, days)
	return s.deleted, s.err
}

func TestOplogPurgeTaskPayload(t *testing.T) {
	task, err := NewOplogPurgeTask(OplogPurgePayload{Days: 14})
	require.NoError(t, err)
	assert.Equal(t, TaskOplogPurge, task.Type())

	var payload OplogPurgePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 14, payload.Days)
}

func TestOplogPurgeJobClears(t *testing.T) {
	purger := &stubPurger{deleted: 5}
	job := NewOplogPurgeJob(purger, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewOplogPurgeTask(OplogPurgePayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []int{0}, purger.days)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskOplogPurge, nil)))
	assert.Equal(t, []int{0, 0}, purger.days)
}

func TestOplogPurgeJobErrors(t *testing.T) {
	boom := errors.New("db down")
	job := NewOplogPurgeJob(&stubPurger{err: boom}, nil, nil)
	task, err := NewOplogPurgeTask(OplogPurgePayload{Days: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), boom)

	err = job.Handle(context.Background(), asynq.NewTask(TaskOplogPurge, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskOplogPurge, []byte(`{"days":-1}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var unset *OplogPurgeJob
	assert.Error(t, unset.Handle(context.Background(), task))
}

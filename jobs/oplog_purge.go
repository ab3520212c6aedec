package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/backoffice/admin-system/internal/jobs"
)

// LogPurger deletes operation logs older than days.
type LogPurger interface {
	Clear(ctx context.Context, days int) (int64, error)
}

// OplogPurgeJob removes operation logs past their retention.
type OplogPurgeJob struct {
	Purger  LogPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOplogPurgeJob initialises the purge handler.
func NewOplogPurgeJob(purger LogPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *OplogPurgeJob {
	return &OplogPurgeJob{Purger: purger, Logger: logger, Metrics: metrics}
}

// Handle executes the purge.
func (j *OplogPurgeJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Purger == nil {
		return errors.New("oplog purge: handler not configured")
	}
	var payload OplogPurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("oplog purge: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Days < 0 {
		return fmt.Errorf("oplog purge: negative days: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskOplogPurge)
	defer func() {
		err = tracker.End(err)
	}()

	deleted, err := j.Purger.Clear(ctx, payload.Days)
	if err != nil {
		return fmt.Errorf("oplog purge: %w", err)
	}
	j.Metrics.AddAffected(TaskOplogPurge, deleted)
	j.logger().Info("operation logs purged", slog.Int64("deleted", deleted), slog.Int("days", payload.Days))
	return nil
}

func (j *OplogPurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOplogPurge is the task type deleting old operation logs.
	TaskOplogPurge = "oplog:purge"
)

// OplogPurgePayload selects the age of logs to delete. Zero days means the
// configured retention.
type OplogPurgePayload struct {
	Days int `json:"days"`
}

// NewOplogPurgeTask constructs an Asynq task.
func NewOplogPurgeTask(payload OplogPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOplogPurge, data, asynq.MaxRetry(3)), nil
}

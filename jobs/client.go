package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client enqueues tasks from outside the worker process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueOplogPurge schedules an immediate operation log purge.
func (c *Client) EnqueueOplogPurge(ctx context.Context, payload OplogPurgePayload) (*asynq.TaskInfo, error) {
	task, err := NewOplogPurgeTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

func (c *Client) Close() error {
	return c.client.Close()
}

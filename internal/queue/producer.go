package queue

import (
	"context"
	"fmt"
	"time"
)

const (
	// TaskDataField is the field name for the serialized task in stream messages.
	TaskDataField = "task"

	// EnqueuedAtField is the field name for the enqueue timestamp.
	EnqueuedAtField = "enqueued_at"

	// defaultTaskTTL matches the queue timeout the worker applies per task,
	// doubled so a marker outlives a task that runs right up to its limit.
	defaultTaskTTL = 20 * time.Minute
)

// Producer enqueues tasks onto Redis Streams and maintains the per-job task
// markers the orchestrators use for orphan detection.
type Producer struct {
	client  *StreamsClient
	taskTTL time.Duration
}

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	TaskTTL time.Duration // marker lifetime (0 = default)
}

// NewProducer creates a new task producer.
func NewProducer(client *StreamsClient, cfg ProducerConfig) *Producer {
	ttl := cfg.TaskTTL
	if ttl <= 0 {
		ttl = defaultTaskTTL
	}
	return &Producer{client: client, taskTTL: ttl}
}

// Submit adds a task to the stream for its queue and sets the task marker.
// Submitting the same job id again is how orphan repair re-delivers work.
func (p *Producer) Submit(ctx context.Context, task *Task) error {
	queueName, err := task.Type.QueueFor()
	if err != nil {
		return err
	}

	data, err := task.Encode()
	if err != nil {
		return err
	}

	stream := p.client.StreamName(queueName)
	_, err = p.client.XAdd(ctx, stream, map[string]any{
		TaskDataField:   string(data),
		EnqueuedAtField: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue task to stream %s: %w", stream, err)
	}

	if err := p.client.SetTaskMarker(ctx, task.JobID, queueName, p.taskTTL); err != nil {
		return fmt.Errorf("failed to set task marker: %w", err)
	}

	return nil
}

// Exists reports whether a pending or active task is known for the job id.
func (p *Producer) Exists(ctx context.Context, jobID string) (bool, error) {
	return p.client.TaskMarkerExists(ctx, jobID)
}

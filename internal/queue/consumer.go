package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultConsumerGroup is shared by all worker processes so each task is
	// delivered to at most one of them.
	defaultConsumerGroup = "workers"

	defaultBlockTimeout = 5 * time.Second
	defaultBatchSize    = 10

	// defaultClaimMinIdle is how long a delivered-but-unacknowledged task
	// must sit before another worker may reclaim it (crash recovery).
	defaultClaimMinIdle = 15 * time.Minute

	maxPendingCheck = 100
)

// Consumer reads tasks from the queue streams using a consumer group.
type Consumer struct {
	client        *StreamsClient
	queues        []string
	consumerGroup string
	consumerID    string
	blockTimeout  time.Duration
	batchSize     int64
	claimMinIdle  time.Duration
	taskTTL       time.Duration
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Queues        []string      // queue names to consume (default: downloads, scans)
	ConsumerGroup string        // consumer group name
	ConsumerID    string        // unique consumer identifier, required
	BlockTimeout  time.Duration // block timeout for reads (0 = default)
	BatchSize     int64         // messages per read (0 = default)
	ClaimMinIdle  time.Duration // min idle before reclaiming (0 = default)
	TaskTTL       time.Duration // marker lifetime re-armed at delivery (0 = default)
}

// ConsumedTask is a task read from a queue.
type ConsumedTask struct {
	MessageID string
	Queue     string
	Task      *Task
}

// NewConsumer creates a new task consumer.
func NewConsumer(client *StreamsClient, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.ConsumerID == "" {
		return nil, errors.New("consumer ID is required")
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = []string{QueueDownloads, QueueScans}
	}

	group := cfg.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}

	blockTimeout := cfg.BlockTimeout
	if blockTimeout <= 0 {
		blockTimeout = defaultBlockTimeout
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	claimMinIdle := cfg.ClaimMinIdle
	if claimMinIdle <= 0 {
		claimMinIdle = defaultClaimMinIdle
	}

	taskTTL := cfg.TaskTTL
	if taskTTL <= 0 {
		taskTTL = defaultTaskTTL
	}

	return &Consumer{
		client:        client,
		queues:        queues,
		consumerGroup: group,
		consumerID:    cfg.ConsumerID,
		blockTimeout:  blockTimeout,
		batchSize:     batchSize,
		claimMinIdle:  claimMinIdle,
		taskTTL:       taskTTL,
	}, nil
}

// Initialize creates consumer groups for all queue streams.
func (c *Consumer) Initialize(ctx context.Context) error {
	for _, queueName := range c.queues {
		stream := c.client.StreamName(queueName)
		if err := c.client.CreateConsumerGroup(ctx, stream, c.consumerGroup); err != nil {
			return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
		}
	}
	return nil
}

// Read returns the next batch of tasks. Stale pending messages (from a
// crashed worker) are reclaimed first; otherwise new messages are read,
// blocking up to the configured timeout.
func (c *Consumer) Read(ctx context.Context) ([]*ConsumedTask, error) {
	if reclaimed := c.reclaimPending(ctx); len(reclaimed) > 0 {
		return reclaimed, nil
	}

	return c.readNewMessages(ctx)
}

// Ack acknowledges successful handling of a task delivery.
func (c *Consumer) Ack(ctx context.Context, task *ConsumedTask) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	stream := c.client.StreamName(task.Queue)
	return c.client.XAck(ctx, stream, c.consumerGroup, task.MessageID)
}

// RefreshMarker re-arms the task marker for a delivered task, so the
// producer's TTL only has to cover time spent waiting in the stream and a
// marker can never expire mid-execution.
func (c *Consumer) RefreshMarker(ctx context.Context, task *ConsumedTask) error {
	if task == nil || task.Task == nil {
		return errors.New("task cannot be nil")
	}
	return c.client.SetTaskMarker(ctx, task.Task.JobID, task.Queue, c.taskTTL)
}

// ClearMarker removes the per-job task marker once the job is terminal.
func (c *Consumer) ClearMarker(ctx context.Context, jobID string) error {
	return c.client.ClearTaskMarker(ctx, jobID)
}

func (c *Consumer) readNewMessages(ctx context.Context) ([]*ConsumedTask, error) {
	streams := make([]string, 0, len(c.queues)*2)
	for _, queueName := range c.queues {
		streams = append(streams, c.client.StreamName(queueName))
	}
	for range c.queues {
		streams = append(streams, ">")
	}

	messages, err := c.client.XReadGroup(ctx, c.consumerGroup, c.consumerID, streams, c.batchSize, c.blockTimeout)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // nothing available
		}
		return nil, fmt.Errorf("failed to read from streams: %w", err)
	}

	return c.parseStreams(messages)
}

// reclaimPending claims messages another consumer received but never
// acknowledged. Errors here are swallowed; reclaim is best effort and the
// next Read retries.
func (c *Consumer) reclaimPending(ctx context.Context) []*ConsumedTask {
	var reclaimed []*ConsumedTask

	for _, queueName := range c.queues {
		stream := c.client.StreamName(queueName)

		pending, err := c.client.XPendingExt(ctx, stream, c.consumerGroup, "-", "+", maxPendingCheck)
		if err != nil {
			continue
		}

		var ids []string
		for _, p := range pending {
			if p.Idle >= c.claimMinIdle {
				ids = append(ids, p.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}

		messages, err := c.client.XClaim(ctx, stream, c.consumerGroup, c.consumerID, c.claimMinIdle, ids...)
		if err != nil {
			continue
		}

		for i := range messages {
			if task := c.parseMessage(queueName, &messages[i]); task != nil {
				reclaimed = append(reclaimed, task)
			}
		}
	}

	return reclaimed
}

func (c *Consumer) parseStreams(streams []redis.XStream) ([]*ConsumedTask, error) {
	var tasks []*ConsumedTask

	for _, stream := range streams {
		queueName := c.queueForStream(stream.Stream)
		for i := range stream.Messages {
			if task := c.parseMessage(queueName, &stream.Messages[i]); task != nil {
				tasks = append(tasks, task)
			}
		}
	}

	return tasks, nil
}

// parseMessage decodes one stream message. Malformed messages are dropped
// and acknowledged so they don't wedge the pending list.
func (c *Consumer) parseMessage(queueName string, msg *redis.XMessage) *ConsumedTask {
	raw, ok := msg.Values[TaskDataField].(string)
	if !ok {
		_ = c.client.XAck(context.Background(), c.client.StreamName(queueName), c.consumerGroup, msg.ID)
		return nil
	}

	task, err := DecodeTask([]byte(raw))
	if err != nil {
		_ = c.client.XAck(context.Background(), c.client.StreamName(queueName), c.consumerGroup, msg.ID)
		return nil
	}

	return &ConsumedTask{
		MessageID: msg.ID,
		Queue:     queueName,
		Task:      task,
	}
}

func (c *Consumer) queueForStream(stream string) string {
	for _, queueName := range c.queues {
		if c.client.StreamName(queueName) == stream {
			return queueName
		}
	}
	return stream
}

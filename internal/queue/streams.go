// Package queue provides the Redis Streams-backed task queue shared by the
// API server (producer side) and the worker (consumer side).
package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultConnectionTimeout bounds the initial Redis ping.
	defaultConnectionTimeout = 2 * time.Second

	defaultPrefix = "video-catalog"
)

// StreamsClient wraps a Redis client with streams-specific operations.
type StreamsClient struct {
	client *redis.Client
	prefix string
}

// StreamsConfig holds configuration for the Redis Streams client.
type StreamsConfig struct {
	Addr     string
	Password string `json:"-"`
	DB       int
	Prefix   string
}

// NewStreamsClient connects to Redis and verifies connectivity.
func NewStreamsClient(cfg StreamsConfig) (*StreamsClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &StreamsClient{client: client, prefix: prefix}, nil
}

// StreamName returns the full stream key for a queue.
func (c *StreamsClient) StreamName(queueName string) string {
	return fmt.Sprintf("%s:queue:%s", c.prefix, queueName)
}

// taskKey returns the marker key tracking a submitted task by job id.
func (c *StreamsClient) taskKey(jobID string) string {
	return fmt.Sprintf("%s:task:%s", c.prefix, jobID)
}

// Close closes the underlying Redis client.
func (c *StreamsClient) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *StreamsClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// CreateConsumerGroup creates a consumer group for a stream if it doesn't exist.
func (c *StreamsClient) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// XAdd adds a message to a stream.
func (c *StreamsClient) XAdd(ctx context.Context, stream string, values map[string]any) (string, error) {
	return c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
}

// XReadGroup reads messages from streams using a consumer group.
func (c *StreamsClient) XReadGroup(
	ctx context.Context, group, consumer string, streams []string, count int64, block time.Duration,
) ([]redis.XStream, error) {
	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  streams,
		Count:    count,
		Block:    block,
	}).Result()
}

// XAck acknowledges messages in a stream.
func (c *StreamsClient) XAck(ctx context.Context, stream, group string, ids ...string) error {
	return c.client.XAck(ctx, stream, group, ids...).Err()
}

// XPendingExt returns detailed pending entries for a stream.
func (c *StreamsClient) XPendingExt(
	ctx context.Context, stream, group, start, end string, count int64,
) ([]redis.XPendingExt, error) {
	return c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  group,
		Start:  start,
		End:    end,
		Count:  count,
	}).Result()
}

// XClaim claims pending messages for a consumer.
func (c *StreamsClient) XClaim(
	ctx context.Context, stream, group, consumer string, minIdle time.Duration, ids ...string,
) ([]redis.XMessage, error) {
	return c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
}

// SetTaskMarker records that a task for jobID has been submitted. The TTL
// bounds how long a crashed worker can leave a marker behind.
func (c *StreamsClient) SetTaskMarker(ctx context.Context, jobID, queueName string, ttl time.Duration) error {
	return c.client.Set(ctx, c.taskKey(jobID), queueName, ttl).Err()
}

// TaskMarkerExists reports whether a pending or active task exists for jobID.
func (c *StreamsClient) TaskMarkerExists(ctx context.Context, jobID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.taskKey(jobID)).Result()
	if err != nil {
		return false, fmt.Errorf("check task marker: %w", err)
	}
	return n > 0, nil
}

// ClearTaskMarker removes the marker once a task reaches a terminal state.
func (c *StreamsClient) ClearTaskMarker(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, c.taskKey(jobID)).Err()
}

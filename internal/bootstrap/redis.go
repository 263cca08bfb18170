package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/video-catalog/internal/config"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/queue"
)

// SetupQueue connects to Redis. Both the API server (producer) and the
// worker (consumer) go through the same streams client.
func SetupQueue(cfg *config.Config, log logger.Logger) (*queue.StreamsClient, error) {
	client, err := queue.NewStreamsClient(queue.StreamsConfig{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("Redis connection established",
		logger.String("redis_address", cfg.Redis.Address),
	)
	return client, nil
}

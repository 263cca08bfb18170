package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jonesrussell/video-catalog/internal/catalog"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/queue"
	"github.com/jonesrussell/video-catalog/internal/repository"
	"github.com/jonesrussell/video-catalog/internal/worker"
	"github.com/jonesrussell/video-catalog/internal/ytdlp"
)

// StartWorker initializes and runs the queue worker until interrupted.
func StartWorker() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, "video-catalog-worker", version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Setup database
	db, err := SetupDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	// Phase 3: Setup Redis streams consumer
	streams, err := SetupQueue(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if closeErr := streams.Close(); closeErr != nil {
			log.Error("Failed to close redis client", logger.Error(closeErr))
		}
	}()

	consumer, err := queue.NewConsumer(streams, queue.ConsumerConfig{
		ConsumerID: "worker-" + uuid.New().String(),
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if initErr := consumer.Initialize(ctx); initErr != nil {
		return fmt.Errorf("failed to initialize consumer groups: %w", initErr)
	}

	// Phase 4: Wire executors and run
	videoRepo := repository.NewVideoRepository(db.DB())
	downloadRepo := repository.NewDownloadJobRepository(db.DB())
	scanRepo := repository.NewScanJobRepository(db.DB())

	extractor := ytdlp.NewClient(ytdlp.Config{BinaryPath: cfg.Media.YtDlpPath}, log)
	catalogSvc := catalog.NewService(videoRepo, log)

	executors := map[queue.TaskType]worker.Executor{
		queue.TaskDownload: worker.NewDownloadExecutor(downloadRepo, videoRepo, extractor,
			worker.DownloadConfig{
				OutputDir: cfg.Media.OutputDir,
				MaxHeight: cfg.Media.MaxHeight,
			}, log),
		queue.TaskScan: worker.NewScanExecutor(scanRepo, extractor, catalogSvc, log),
	}

	runner := worker.NewRunner(consumer, executors, worker.RunnerConfig{
		Concurrency: cfg.Worker.Concurrency,
		JobTimeout:  cfg.Worker.JobTimeout,
	}, log)

	if runErr := runner.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("worker error: %w", runErr)
	}

	return nil
}

// Package worker executes queued download and scan tasks. Executors drive
// all state through the job record; tasks only carry the job id.
package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// VideoStore is the catalog access the download executor needs.
type VideoStore interface {
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	MarkDownloaded(ctx context.Context, videoID, jobID string, at time.Time) error
}

// DownloadJobStore is the job persistence the download executor needs.
type DownloadJobStore interface {
	GetByID(ctx context.Context, id string) (*domain.DownloadJob, error)
	Update(ctx context.Context, job *domain.DownloadJob) error
}

// MediaDownloader downloads one item and returns the produced file path.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, itemURL, outputDir, videoID string, uploader *string, maxHeight int) (string, error)
}

// DownloadConfig holds the media output settings for the executor.
type DownloadConfig struct {
	OutputDir string
	MaxHeight int
}

// DownloadExecutor runs download tasks.
type DownloadExecutor struct {
	jobs       DownloadJobStore
	videos     VideoStore
	downloader MediaDownloader
	cfg        DownloadConfig
	logger     logger.Logger

	fileExists func(path string) bool
}

// NewDownloadExecutor creates a download executor.
func NewDownloadExecutor(
	jobs DownloadJobStore, videos VideoStore, downloader MediaDownloader,
	cfg DownloadConfig, log logger.Logger,
) *DownloadExecutor {
	return &DownloadExecutor{
		jobs:       jobs,
		videos:     videos,
		downloader: downloader,
		cfg:        cfg,
		logger:     log,
		fileExists: fileExists,
	}
}

// Execute runs one download job to a terminal state. Redeliveries of an
// already-successful job are a no-op; any failure lands in the job record
// with the verbatim cause.
func (e *DownloadExecutor) Execute(ctx context.Context, jobID string) error {
	job, err := e.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load download job: %w", err)
	}

	if job.Status == domain.StatusSuccess {
		e.logger.Info("download job already succeeded, skipping",
			logger.String("job_id", jobID))
		return nil
	}

	video, err := e.videos.GetByID(ctx, job.VideoID)
	if err != nil {
		return e.fail(ctx, job, fmt.Errorf("load video: %w", err))
	}

	now := time.Now().UTC()
	job.Status = domain.StatusRunning
	job.Progress = 5
	job.StartedAt = &now
	job.ErrorMessage = nil
	if err := e.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	if job.OutputPath != nil && e.fileExists(*job.OutputPath) {
		return e.succeed(ctx, job, *job.OutputPath)
	}

	outputPath, err := e.downloader.DownloadMedia(
		ctx, video.WebpageURL, e.cfg.OutputDir, video.VideoID, video.Uploader, e.cfg.MaxHeight)
	if err != nil {
		return e.fail(ctx, job, err)
	}

	return e.succeed(ctx, job, outputPath)
}

func (e *DownloadExecutor) succeed(ctx context.Context, job *domain.DownloadJob, outputPath string) error {
	now := time.Now().UTC()
	job.Status = domain.StatusSuccess
	job.Progress = 100
	job.OutputPath = &outputPath
	job.ErrorMessage = nil
	job.FinishedAt = &now
	if err := e.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}

	if err := e.videos.MarkDownloaded(ctx, job.VideoID, job.JobID, now); err != nil {
		e.logger.Warn("failed to record download on video",
			logger.String("video_id", job.VideoID),
			logger.Error(err))
	}

	e.logger.Info("download job succeeded",
		logger.String("job_id", job.JobID),
		logger.String("output_path", outputPath))
	return nil
}

func (e *DownloadExecutor) fail(ctx context.Context, job *domain.DownloadJob, cause error) error {
	now := time.Now().UTC()
	msg := cause.Error()
	job.Status = domain.StatusFailed
	job.Progress = 0
	job.ErrorMessage = &msg
	job.FinishedAt = &now
	if err := e.jobs.Update(ctx, job); err != nil {
		e.logger.Error("failed to mark job failed",
			logger.String("job_id", job.JobID),
			logger.Error(err))
	}

	e.logger.Error("download job failed",
		logger.String("job_id", job.JobID),
		logger.Error(cause))
	return cause
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

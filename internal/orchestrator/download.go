// Package orchestrator creates jobs and submits their tasks, enforcing the
// one-active-job-per-video rule and repairing jobs whose queue task was
// lost.
package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/queue"
)

// VideoStore is the video lookup the download orchestrator needs.
type VideoStore interface {
	GetByID(ctx context.Context, id string) (*domain.Video, error)
}

// DownloadJobStore is the job persistence the download orchestrator needs.
type DownloadJobStore interface {
	Create(ctx context.Context, job *domain.DownloadJob) error
	Update(ctx context.Context, job *domain.DownloadJob) error
	ActiveByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error)
	LatestSuccessByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error)
}

// TaskSubmitter submits tasks to the queue and answers whether a task is
// still known for a job id.
type TaskSubmitter interface {
	Submit(ctx context.Context, task *queue.Task) error
	Exists(ctx context.Context, jobID string) (bool, error)
}

// DownloadOrchestrator handles download requests against the catalog.
type DownloadOrchestrator struct {
	videos VideoStore
	jobs   DownloadJobStore
	tasks  TaskSubmitter
	logger logger.Logger

	// fileExists is swapped in tests.
	fileExists func(path string) bool
}

// NewDownloadOrchestrator creates a download orchestrator.
func NewDownloadOrchestrator(
	videos VideoStore, jobs DownloadJobStore, tasks TaskSubmitter, log logger.Logger,
) *DownloadOrchestrator {
	return &DownloadOrchestrator{
		videos:     videos,
		jobs:       jobs,
		tasks:      tasks,
		logger:     log,
		fileExists: fileExists,
	}
}

// Request resolves a download request for a video:
//   - an active job is returned as-is, unless its queue task vanished, in
//     which case the same job is reset and re-enqueued (orphan repair);
//   - a prior success whose output file is still on disk is returned
//     without new work;
//   - otherwise a fresh job is created and enqueued.
func (o *DownloadOrchestrator) Request(ctx context.Context, videoID string) (*domain.DownloadJob, error) {
	if _, err := o.videos.GetByID(ctx, videoID); err != nil {
		return nil, err
	}

	active, err := o.jobs.ActiveByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return o.repairIfOrphaned(ctx, active)
	}

	success, err := o.jobs.LatestSuccessByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if success != nil && success.OutputPath != nil && o.fileExists(*success.OutputPath) {
		return success, nil
	}

	return o.createAndSubmit(ctx, videoID)
}

// repairIfOrphaned checks the queue for the active job's task. A missing
// task means the queue lost it (flush, restart); the job is reset to queued
// and re-enqueued under the same id so callers keep a stable handle.
// Verification errors count as missing: re-enqueueing a live task is
// harmless while leaving an orphan strands the video forever.
func (o *DownloadOrchestrator) repairIfOrphaned(ctx context.Context, job *domain.DownloadJob) (*domain.DownloadJob, error) {
	exists, err := o.tasks.Exists(ctx, job.JobID)
	if err != nil {
		o.logger.Warn("task verification failed, treating as orphaned",
			logger.String("job_id", job.JobID),
			logger.Error(err))
	}
	if exists {
		return job, nil
	}

	job.Status = domain.StatusQueued
	job.Progress = 0
	job.StartedAt = nil
	job.ErrorMessage = nil
	if err := o.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("reset orphaned job: %w", err)
	}

	if err := o.tasks.Submit(ctx, &queue.Task{Type: queue.TaskDownload, JobID: job.JobID}); err != nil {
		return nil, fmt.Errorf("re-enqueue orphaned job: %w", err)
	}

	o.logger.Info("orphaned download job re-enqueued",
		logger.String("job_id", job.JobID),
		logger.String("video_id", job.VideoID))
	return job, nil
}

func (o *DownloadOrchestrator) createAndSubmit(ctx context.Context, videoID string) (*domain.DownloadJob, error) {
	job := &domain.DownloadJob{
		JobID:    uuid.New().String(),
		VideoID:  videoID,
		Status:   domain.StatusQueued,
		Progress: 0,
	}

	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create download job: %w", err)
	}

	if err := o.tasks.Submit(ctx, &queue.Task{Type: queue.TaskDownload, JobID: job.JobID}); err != nil {
		return nil, fmt.Errorf("enqueue download job: %w", err)
	}

	o.logger.Info("download job created",
		logger.String("job_id", job.JobID),
		logger.String("video_id", videoID))
	return job, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/video-catalog/internal/domain"
)

// DownloadJobRepository handles database operations for download jobs.
type DownloadJobRepository struct {
	db *sqlx.DB
}

// NewDownloadJobRepository creates a new download job repository.
func NewDownloadJobRepository(db *sqlx.DB) *DownloadJobRepository {
	return &DownloadJobRepository{db: db}
}

const downloadJobColumns = `job_id, video_id, status, progress, output_path, error_message,
	       started_at, finished_at, created_at, updated_at`

// Create inserts a new download job.
func (r *DownloadJobRepository) Create(ctx context.Context, job *domain.DownloadJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
		INSERT INTO download_jobs (job_id, video_id, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		job.JobID,
		job.VideoID,
		job.Status,
		job.Progress,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create download job: %w", err)
	}

	return nil
}

// GetByID retrieves a download job by id.
func (r *DownloadJobRepository) GetByID(ctx context.Context, id string) (*domain.DownloadJob, error) {
	var job domain.DownloadJob
	query := `
		SELECT ` + downloadJobColumns + `
		FROM download_jobs
		WHERE job_id = $1
	`

	err := r.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("download job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get download job: %w", err)
	}

	return &job, nil
}

// Update persists the full mutable state of a job in one statement, so a
// status transition, its timestamps and payload become visible atomically.
func (r *DownloadJobRepository) Update(ctx context.Context, job *domain.DownloadJob) error {
	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE download_jobs
		SET status = $2, progress = $3, output_path = $4, error_message = $5,
		    started_at = $6, finished_at = $7, updated_at = $8
		WHERE job_id = $1
	`

	result, err := r.db.ExecContext(ctx,
		query,
		job.JobID,
		job.Status,
		job.Progress,
		job.OutputPath,
		job.ErrorMessage,
		job.StartedAt,
		job.FinishedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update download job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("download job %s: %w", job.JobID, domain.ErrNotFound)
	}

	return nil
}

// ActiveByVideo returns the most recent queued or running job for a video,
// or nil when the video has no active job.
func (r *DownloadJobRepository) ActiveByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error) {
	var job domain.DownloadJob
	query := `
		SELECT ` + downloadJobColumns + `
		FROM download_jobs
		WHERE video_id = $1 AND status IN ('queued', 'running')
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &job, query, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active job: %w", err)
	}

	return &job, nil
}

// LatestSuccessByVideo returns the most recent successful job for a video,
// or nil when none exists.
func (r *DownloadJobRepository) LatestSuccessByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error) {
	var job domain.DownloadJob
	query := `
		SELECT ` + downloadJobColumns + `
		FROM download_jobs
		WHERE video_id = $1 AND status = 'success'
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &job, query, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest success job: %w", err)
	}

	return &job, nil
}

// LatestByVideo returns the most recent job of any status for a video.
func (r *DownloadJobRepository) LatestByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error) {
	var job domain.DownloadJob
	query := `
		SELECT ` + downloadJobColumns + `
		FROM download_jobs
		WHERE video_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &job, query, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("download job for video %s: %w", videoID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("query latest job: %w", err)
	}

	return &job, nil
}

// LatestByVideos returns the most recent job per video id. Videos without
// jobs are absent from the result.
func (r *DownloadJobRepository) LatestByVideos(ctx context.Context, videoIDs []string) (map[string]*domain.DownloadJob, error) {
	latest := make(map[string]*domain.DownloadJob, len(videoIDs))
	if len(videoIDs) == 0 {
		return latest, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+downloadJobColumns+`
		FROM download_jobs
		WHERE video_id IN (?)
		ORDER BY video_id ASC, created_at DESC
	`, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	query = r.db.Rebind(query)

	var jobs []domain.DownloadJob
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("query latest jobs: %w", err)
	}

	for i := range jobs {
		job := jobs[i]
		if _, seen := latest[job.VideoID]; !seen {
			latest[job.VideoID] = &job
		}
	}

	return latest, nil
}

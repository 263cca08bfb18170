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

// ScanJobRepository handles database operations for channel scan jobs.
type ScanJobRepository struct {
	db *sqlx.DB
}

// NewScanJobRepository creates a new scan job repository.
func NewScanJobRepository(db *sqlx.DB) *ScanJobRepository {
	return &ScanJobRepository{db: db}
}

const scanJobColumns = `scan_id, channel, include_shorts, include_videos, include_streams,
	       max_items, status, progress, counts, unique_videos, inserted, updated,
	       error_message, started_at, finished_at, created_at, updated_at`

// Create inserts a new scan job.
func (r *ScanJobRepository) Create(ctx context.Context, scan *domain.ScanJob) error {
	now := time.Now().UTC()
	scan.CreatedAt = now
	scan.UpdatedAt = now
	if scan.Counts == nil {
		scan.Counts = domain.CategoryCounts{}
	}

	query := `
		INSERT INTO scan_jobs (
			scan_id, channel, include_shorts, include_videos, include_streams,
			max_items, status, progress, counts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		scan.ScanID,
		scan.Channel,
		scan.IncludeShorts,
		scan.IncludeVideos,
		scan.IncludeStreams,
		scan.MaxItems,
		scan.Status,
		scan.Progress,
		scan.Counts,
		scan.CreatedAt,
		scan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create scan job: %w", err)
	}

	return nil
}

// GetByID retrieves a scan job by id.
func (r *ScanJobRepository) GetByID(ctx context.Context, id string) (*domain.ScanJob, error) {
	var scan domain.ScanJob
	query := `
		SELECT ` + scanJobColumns + `
		FROM scan_jobs
		WHERE scan_id = $1
	`

	err := r.db.GetContext(ctx, &scan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scan job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get scan job: %w", err)
	}

	return &scan, nil
}

// Update persists the full mutable state of a scan in one statement, so
// counters, progress and status stay consistent for pollers.
func (r *ScanJobRepository) Update(ctx context.Context, scan *domain.ScanJob) error {
	scan.UpdatedAt = time.Now().UTC()
	if scan.Counts == nil {
		scan.Counts = domain.CategoryCounts{}
	}

	query := `
		UPDATE scan_jobs
		SET status = $2, progress = $3, counts = $4, unique_videos = $5,
		    inserted = $6, updated = $7, error_message = $8,
		    started_at = $9, finished_at = $10, updated_at = $11
		WHERE scan_id = $1
	`

	result, err := r.db.ExecContext(ctx,
		query,
		scan.ScanID,
		scan.Status,
		scan.Progress,
		scan.Counts,
		scan.UniqueVideos,
		scan.Inserted,
		scan.Updated,
		scan.ErrorMessage,
		scan.StartedAt,
		scan.FinishedAt,
		scan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update scan job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scan job %s: %w", scan.ScanID, domain.ErrNotFound)
	}

	return nil
}

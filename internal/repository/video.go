// Package repository provides database access for videos and jobs. Every
// status transition is a single statement so pollers never observe a
// partially updated record.
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

// VideoRepository handles database operations for catalog videos.
type VideoRepository struct {
	db *sqlx.DB
}

// NewVideoRepository creates a new video repository.
func NewVideoRepository(db *sqlx.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `video_id, webpage_url, title, duration, view_count, upload_date,
	       uploader, is_short, created_at, last_download_job_id, downloaded_at`

// GetByID retrieves a video by its natural id.
func (r *VideoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var video domain.Video
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE video_id = $1
	`

	err := r.db.GetContext(ctx, &video, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get video: %w", err)
	}

	return &video, nil
}

// Upsert inserts or updates a video in one statement, overwriting the
// metadata columns. Returns true when a new row was inserted. Uses the
// (xmax = 0) trick to distinguish insert from update.
func (r *VideoRepository) Upsert(ctx context.Context, video *domain.Video) (bool, error) {
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO videos (
			video_id, webpage_url, title, duration, view_count,
			upload_date, uploader, is_short, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (video_id) DO UPDATE SET
			webpage_url = EXCLUDED.webpage_url,
			title = EXCLUDED.title,
			duration = EXCLUDED.duration,
			view_count = EXCLUDED.view_count,
			upload_date = EXCLUDED.upload_date,
			uploader = EXCLUDED.uploader,
			is_short = EXCLUDED.is_short
		RETURNING (xmax = 0) AS is_insert
	`

	var isInsert bool
	err := r.db.QueryRowContext(ctx,
		query,
		video.VideoID,
		video.WebpageURL,
		video.Title,
		video.Duration,
		video.ViewCount,
		video.UploadDate,
		video.Uploader,
		video.IsShort,
		video.CreatedAt,
	).Scan(&isInsert)

	if err != nil {
		return false, fmt.Errorf("upsert video: %w", err)
	}

	return isInsert, nil
}

// Update overwrites the metadata columns of an existing video.
func (r *VideoRepository) Update(ctx context.Context, video *domain.Video) error {
	query := `
		UPDATE videos
		SET webpage_url = $2, title = $3, duration = $4, view_count = $5,
		    upload_date = $6, uploader = $7, is_short = $8
		WHERE video_id = $1
	`

	result, err := r.db.ExecContext(ctx,
		query,
		video.VideoID,
		video.WebpageURL,
		video.Title,
		video.Duration,
		video.ViewCount,
		video.UploadDate,
		video.Uploader,
		video.IsShort,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("video %s: %w", video.VideoID, domain.ErrNotFound)
	}

	return nil
}

// MarkDownloaded records a finished download on the video. One statement, so
// job id and timestamp land together.
func (r *VideoRepository) MarkDownloaded(ctx context.Context, videoID, jobID string, at time.Time) error {
	query := `
		UPDATE videos
		SET last_download_job_id = $2, downloaded_at = $3
		WHERE video_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, videoID, jobID, at)
	if err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("video %s: %w", videoID, domain.ErrNotFound)
	}

	return nil
}

// ListFilter holds the optional catalog list filters.
type ListFilter struct {
	Query       string // substring match on title
	IsShort     *bool
	MinViews    *int64
	MaxDuration *int64
}

// List returns catalog videos matching the filter, newest first.
func (r *VideoRepository) List(ctx context.Context, filter ListFilter) ([]domain.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE 1=1`
	var args []any
	pos := 1

	if filter.Query != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", pos)
		args = append(args, "%"+filter.Query+"%")
		pos++
	}
	if filter.IsShort != nil {
		query += fmt.Sprintf(" AND is_short = $%d", pos)
		args = append(args, *filter.IsShort)
		pos++
	}
	if filter.MinViews != nil {
		query += fmt.Sprintf(" AND view_count IS NOT NULL AND view_count >= $%d", pos)
		args = append(args, *filter.MinViews)
		pos++
	}
	if filter.MaxDuration != nil {
		query += fmt.Sprintf(" AND duration IS NOT NULL AND duration <= $%d", pos)
		args = append(args, *filter.MaxDuration)
	}

	query += " ORDER BY created_at DESC"

	videos := make([]domain.Video, 0)
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	return videos, nil
}

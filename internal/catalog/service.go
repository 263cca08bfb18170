// Package catalog applies extracted video metadata to the stored catalog.
// Scans overwrite; direct add-by-url merges conservatively so a fresher
// record is never clobbered by a sparser extraction.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// VideoStore is the catalog persistence the service needs.
type VideoStore interface {
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	Upsert(ctx context.Context, video *domain.Video) (bool, error)
	Update(ctx context.Context, video *domain.Video) error
}

// Service persists extraction results into the video catalog.
type Service struct {
	videos VideoStore
	logger logger.Logger
}

// NewService creates a catalog service.
func NewService(videos VideoStore, log logger.Logger) *Service {
	return &Service{videos: videos, logger: log}
}

// UpsertFromScan writes scan-extracted metadata, unconditionally
// overwriting any existing record. Returns true when a new record was
// inserted, false on update. Metadata without an id is dropped.
func (s *Service) UpsertFromScan(ctx context.Context, meta *domain.VideoMetadata) (bool, error) {
	if meta == nil || meta.ID == "" {
		return false, nil
	}

	inserted, err := s.videos.Upsert(ctx, videoFromMetadata(meta))
	if err != nil {
		return false, fmt.Errorf("upsert from scan: %w", err)
	}
	return inserted, nil
}

// UpsertFromURL writes metadata from a direct add-by-url. New videos are
// inserted as-is; for existing videos only fields the extraction actually
// reported replace stored values. Returns the stored record.
func (s *Service) UpsertFromURL(ctx context.Context, meta *domain.VideoMetadata) (*domain.Video, error) {
	if meta == nil || meta.ID == "" {
		return nil, fmt.Errorf("add by url: %w", domain.ErrInvalidArgument)
	}

	existing, err := s.videos.GetByID(ctx, meta.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("lookup video: %w", err)
		}

		video := videoFromMetadata(meta)
		if _, err := s.videos.Upsert(ctx, video); err != nil {
			return nil, fmt.Errorf("insert video: %w", err)
		}
		s.logger.Info("video added to catalog", logger.String("video_id", video.VideoID))
		return video, nil
	}

	merged := mergeMetadata(existing, meta)
	if err := s.videos.Update(ctx, merged); err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}
	return merged, nil
}

func videoFromMetadata(meta *domain.VideoMetadata) *domain.Video {
	url := meta.WebpageURL
	if url == "" {
		url = domain.WatchURL(meta.ID)
	}

	return &domain.Video{
		VideoID:    meta.ID,
		WebpageURL: url,
		Title:      meta.Title,
		Duration:   meta.Duration,
		ViewCount:  meta.ViewCount,
		UploadDate: meta.UploadDate,
		Uploader:   meta.Uploader,
		IsShort:    domain.IsShortDuration(meta.Duration),
	}
}

// mergeMetadata overlays reported fields onto the existing record.
// Unreported (nil) fields keep their stored values; the short flag is
// recomputed from whichever duration survives.
func mergeMetadata(existing *domain.Video, meta *domain.VideoMetadata) *domain.Video {
	merged := *existing

	if meta.WebpageURL != "" {
		merged.WebpageURL = meta.WebpageURL
	}
	if meta.Title != nil {
		merged.Title = meta.Title
	}
	if meta.Duration != nil {
		merged.Duration = meta.Duration
	}
	if meta.ViewCount != nil {
		merged.ViewCount = meta.ViewCount
	}
	if meta.UploadDate != nil {
		merged.UploadDate = meta.UploadDate
	}
	if meta.Uploader != nil {
		merged.Uploader = meta.Uploader
	}
	merged.IsShort = domain.IsShortDuration(merged.Duration)

	return &merged
}

package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// Progress milestones for a scan. Enumeration accounts for the first 10%,
// per-item detail extraction fills the rest up to 99; only the terminal
// transition writes 100.
const (
	scanProgressStarted    = 1
	scanProgressEnumerated = 10
	scanProgressMax        = 99
)

// ScanJobStore is the job persistence the scan executor needs.
type ScanJobStore interface {
	GetByID(ctx context.Context, id string) (*domain.ScanJob, error)
	Update(ctx context.Context, job *domain.ScanJob) error
}

// Extractor enumerates channel listings and extracts item metadata.
type Extractor interface {
	ExtractFlat(ctx context.Context, listURL string, limit int) ([]domain.FlatEntry, error)
	ExtractDetail(ctx context.Context, itemURL string) (*domain.VideoMetadata, error)
}

// CatalogWriter persists scan-extracted metadata.
type CatalogWriter interface {
	UpsertFromScan(ctx context.Context, meta *domain.VideoMetadata) (bool, error)
}

// ScanExecutor runs channel scan tasks.
type ScanExecutor struct {
	jobs      ScanJobStore
	extractor Extractor
	catalog   CatalogWriter
	logger    logger.Logger
}

// NewScanExecutor creates a scan executor.
func NewScanExecutor(jobs ScanJobStore, extractor Extractor, catalog CatalogWriter, log logger.Logger) *ScanExecutor {
	return &ScanExecutor{jobs: jobs, extractor: extractor, catalog: catalog, logger: log}
}

// Execute runs one scan job to a terminal state: enumerate each enabled
// category, then extract and upsert every unique item. A category that fails
// to enumerate contributes zero entries; an item that fails detail
// extraction is skipped. Only persistence errors fail the scan.
func (e *ScanExecutor) Execute(ctx context.Context, scanID string) error {
	job, err := e.jobs.GetByID(ctx, scanID)
	if err != nil {
		return fmt.Errorf("load scan job: %w", err)
	}

	if job.Status == domain.StatusSuccess {
		e.logger.Info("scan job already succeeded, skipping",
			logger.String("scan_id", scanID))
		return nil
	}

	// A redelivered job (reclaimed after a worker crash) re-runs from the
	// start: counters reset so the attempt doesn't double-count, while
	// progress only ever moves forward from what a poller already saw.
	now := time.Now().UTC()
	job.Status = domain.StatusRunning
	if job.Progress < scanProgressStarted {
		job.Progress = scanProgressStarted
	}
	job.StartedAt = &now
	job.ErrorMessage = nil
	job.Counts = domain.CategoryCounts{}
	job.UniqueVideos = 0
	job.Inserted = 0
	job.Updated = 0
	if err := e.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark scan running: %w", err)
	}

	entries := e.enumerate(ctx, job)
	if job.Progress < scanProgressEnumerated {
		job.Progress = scanProgressEnumerated
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return e.fail(ctx, job, fmt.Errorf("persist enumeration: %w", err))
	}

	if err := e.processEntries(ctx, job, entries); err != nil {
		return e.fail(ctx, job, err)
	}

	return e.succeed(ctx, job)
}

// enumerate lists each enabled category, recording per-category counts on
// the job. Counts only carry categories the scan actually requested.
func (e *ScanExecutor) enumerate(ctx context.Context, job *domain.ScanJob) []domain.FlatEntry {
	base := domain.ChannelBaseURL(job.Channel)
	job.Counts = domain.CategoryCounts{}

	var all []domain.FlatEntry
	for _, category := range job.Categories() {
		listURL := base + "/" + category

		entries, err := e.extractor.ExtractFlat(ctx, listURL, job.MaxItems)
		if err != nil {
			e.logger.Warn("category enumeration failed",
				logger.String("scan_id", job.ScanID),
				logger.String("category", category),
				logger.Error(err))
			job.Counts[category] = 0
			continue
		}

		if len(entries) > job.MaxItems {
			entries = entries[:job.MaxItems]
		}
		job.Counts[category] = len(entries)
		all = append(all, entries...)
	}

	return all
}

// processEntries extracts details for every unique item and upserts the
// results, advancing progress monotonically after each item.
func (e *ScanExecutor) processEntries(ctx context.Context, job *domain.ScanJob, entries []domain.FlatEntry) error {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]domain.FlatEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		unique = append(unique, entry)
	}

	total := len(unique)
	if total == 0 {
		return nil
	}

	for processed, entry := range unique {
		job.UniqueVideos++

		itemURL := entry.URL
		if !strings.HasPrefix(itemURL, "http") {
			itemURL = domain.WatchURL(entry.ID)
		}

		meta, err := e.extractor.ExtractDetail(ctx, itemURL)
		if err != nil {
			e.logger.Warn("item extraction failed, skipping",
				logger.String("scan_id", job.ScanID),
				logger.String("video_id", entry.ID),
				logger.Error(err))
		} else {
			inserted, err := e.catalog.UpsertFromScan(ctx, meta)
			if err != nil {
				return fmt.Errorf("store video %s: %w", entry.ID, err)
			}
			if inserted {
				job.Inserted++
			} else {
				job.Updated++
			}
		}

		job.Progress = scanProgress(job.Progress, processed+1, total)
		if err := e.jobs.Update(ctx, job); err != nil {
			return fmt.Errorf("persist scan progress: %w", err)
		}
	}

	return nil
}

func (e *ScanExecutor) succeed(ctx context.Context, job *domain.ScanJob) error {
	now := time.Now().UTC()
	job.Status = domain.StatusSuccess
	job.Progress = 100
	job.ErrorMessage = nil
	job.FinishedAt = &now
	if err := e.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("mark scan succeeded: %w", err)
	}

	e.logger.Info("scan job succeeded",
		logger.String("scan_id", job.ScanID),
		logger.String("channel", job.Channel),
		logger.Int("unique_videos", job.UniqueVideos),
		logger.Int("inserted", job.Inserted),
		logger.Int("updated", job.Updated))
	return nil
}

func (e *ScanExecutor) fail(ctx context.Context, job *domain.ScanJob, cause error) error {
	now := time.Now().UTC()
	msg := cause.Error()
	job.Status = domain.StatusFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &now
	if err := e.jobs.Update(ctx, job); err != nil {
		e.logger.Error("failed to mark scan failed",
			logger.String("scan_id", job.ScanID),
			logger.Error(err))
	}

	e.logger.Error("scan job failed",
		logger.String("scan_id", job.ScanID),
		logger.Error(cause))
	return cause
}

// scanProgress maps processed/total onto the 10..99 band, never moving
// backwards even if item ordering produces a smaller value.
func scanProgress(current, processed, total int) int {
	p := scanProgressEnumerated + processed*(scanProgressMax-scanProgressEnumerated)/total
	if p > scanProgressMax {
		p = scanProgressMax
	}
	if p < current {
		p = current
	}
	return p
}

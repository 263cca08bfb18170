package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/queue"
)

// ScanJobStore is the job persistence the scan orchestrator needs.
type ScanJobStore interface {
	Create(ctx context.Context, job *domain.ScanJob) error
}

// ScanRequest describes a requested channel scan.
type ScanRequest struct {
	Channel        string `json:"channel"         binding:"required"`
	IncludeShorts  bool   `json:"include_shorts"`
	IncludeVideos  bool   `json:"include_videos"`
	IncludeStreams bool   `json:"include_streams"`
	MaxItems       int    `json:"max_items"`
}

// ScanOrchestrator creates scan jobs.
type ScanOrchestrator struct {
	jobs        ScanJobStore
	tasks       TaskSubmitter
	maxItemsCap int
	logger      logger.Logger
}

// NewScanOrchestrator creates a scan orchestrator. maxItemsCap bounds the
// per-category item limit a caller may request.
func NewScanOrchestrator(jobs ScanJobStore, tasks TaskSubmitter, maxItemsCap int, log logger.Logger) *ScanOrchestrator {
	return &ScanOrchestrator{jobs: jobs, tasks: tasks, maxItemsCap: maxItemsCap, logger: log}
}

// CreateScan validates the request, clamps max_items, persists a queued scan
// job and submits its task. Validation happens before any record exists, so
// a bad request never leaves a job behind.
func (o *ScanOrchestrator) CreateScan(ctx context.Context, req *ScanRequest) (*domain.ScanJob, error) {
	channel, err := domain.NormalizeChannelHandle(req.Channel)
	if err != nil {
		return nil, err
	}

	if !req.IncludeShorts && !req.IncludeVideos && !req.IncludeStreams {
		return nil, fmt.Errorf("at least one category must be enabled: %w", domain.ErrInvalidArgument)
	}

	job := &domain.ScanJob{
		ScanID:         uuid.New().String(),
		Channel:        channel,
		IncludeShorts:  req.IncludeShorts,
		IncludeVideos:  req.IncludeVideos,
		IncludeStreams: req.IncludeStreams,
		MaxItems:       o.clampMaxItems(req.MaxItems),
		Status:         domain.StatusQueued,
		Progress:       0,
		Counts:         domain.CategoryCounts{},
	}

	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create scan job: %w", err)
	}

	if err := o.tasks.Submit(ctx, &queue.Task{Type: queue.TaskScan, JobID: job.ScanID}); err != nil {
		return nil, fmt.Errorf("enqueue scan job: %w", err)
	}

	o.logger.Info("scan job created",
		logger.String("scan_id", job.ScanID),
		logger.String("channel", channel),
		logger.Int("max_items", job.MaxItems))
	return job, nil
}

// clampMaxItems maps an unset (zero or negative) request to the cap and
// bounds positive requests by it.
func (o *ScanOrchestrator) clampMaxItems(requested int) int {
	if requested <= 0 || requested > o.maxItemsCap {
		return o.maxItemsCap
	}
	return requested
}

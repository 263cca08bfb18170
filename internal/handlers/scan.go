package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/orchestrator"
)

// ScanCreator creates channel scan jobs.
type ScanCreator interface {
	CreateScan(ctx context.Context, req *orchestrator.ScanRequest) (*domain.ScanJob, error)
}

// ScanJobReader is the scan lookup surface the handler needs.
type ScanJobReader interface {
	GetByID(ctx context.Context, id string) (*domain.ScanJob, error)
}

type ScanHandler struct {
	orchestrator ScanCreator
	jobs         ScanJobReader
	logger       logger.Logger
}

func NewScanHandler(orchestrator ScanCreator, jobs ScanJobReader, log logger.Logger) *ScanHandler {
	return &ScanHandler{
		orchestrator: orchestrator,
		jobs:         jobs,
		logger:       log,
	}
}

// Create requests a channel scan. Returns 202 with the queued scan job.
func (h *ScanHandler) Create(c *gin.Context) {
	var req orchestrator.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job, err := h.orchestrator.CreateScan(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "create scan")
		return
	}

	c.JSON(http.StatusAccepted, job)
}

func (h *ScanHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get scan job")
		return
	}

	c.JSON(http.StatusOK, job)
}

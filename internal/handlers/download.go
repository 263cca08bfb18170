package handlers

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// DownloadRequester resolves a download request for a video.
type DownloadRequester interface {
	Request(ctx context.Context, videoID string) (*domain.DownloadJob, error)
}

// DownloadJobReader is the job lookup surface the handler needs.
type DownloadJobReader interface {
	GetByID(ctx context.Context, id string) (*domain.DownloadJob, error)
	LatestByVideo(ctx context.Context, videoID string) (*domain.DownloadJob, error)
	LatestByVideos(ctx context.Context, videoIDs []string) (map[string]*domain.DownloadJob, error)
}

type DownloadHandler struct {
	orchestrator DownloadRequester
	jobs         DownloadJobReader
	logger       logger.Logger
}

func NewDownloadHandler(orchestrator DownloadRequester, jobs DownloadJobReader, log logger.Logger) *DownloadHandler {
	return &DownloadHandler{
		orchestrator: orchestrator,
		jobs:         jobs,
		logger:       log,
	}
}

type createDownloadRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

// Create requests a download for a catalog video. Returns 202 with the job
// driving the download, which may be a pre-existing one.
func (h *DownloadHandler) Create(c *gin.Context) {
	var req createDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job, err := h.orchestrator.Request(c.Request.Context(), req.VideoID)
	if err != nil {
		respondError(c, h.logger, err, "request download")
		return
	}

	c.JSON(http.StatusAccepted, job)
}

func (h *DownloadHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get download job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// File serves the downloaded media of a successful job. A job that is not
// terminal-successful yet is a conflict; a recorded file that has since
// vanished from disk is gone.
func (h *DownloadHandler) File(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get download job")
		return
	}

	if job.Status != domain.StatusSuccess || job.OutputPath == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Download not finished", "status": job.Status})
		return
	}

	if _, statErr := os.Stat(*job.OutputPath); statErr != nil {
		h.logger.Warn("Downloaded file missing from disk",
			logger.String("job_id", id),
			logger.String("output_path", *job.OutputPath),
		)
		c.JSON(http.StatusGone, gin.H{"error": "Downloaded file no longer available"})
		return
	}

	c.File(*job.OutputPath)
}

// LatestForVideo returns the most recent download job of any status for a
// catalog video.
func (h *DownloadHandler) LatestForVideo(c *gin.Context) {
	videoID := c.Param("id")

	job, err := h.jobs.LatestByVideo(c.Request.Context(), videoID)
	if err != nil {
		respondError(c, h.logger, err, "get latest download")
		return
	}

	c.JSON(http.StatusOK, job)
}

type byVideosRequest struct {
	VideoIDs []string `json:"video_ids" binding:"required"`
}

// ByVideos returns the latest download job per requested video id. Videos
// without any job are absent from the response.
func (h *DownloadHandler) ByVideos(c *gin.Context) {
	var req byVideosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	jobs, err := h.jobs.LatestByVideos(c.Request.Context(), req.VideoIDs)
	if err != nil {
		respondError(c, h.logger, err, "get downloads by videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

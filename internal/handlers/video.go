package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/repository"
)

// VideoLister is the catalog query surface the handler needs.
type VideoLister interface {
	List(ctx context.Context, filter repository.ListFilter) ([]domain.Video, error)
}

// DetailExtractor extracts metadata for one item URL.
type DetailExtractor interface {
	ExtractDetail(ctx context.Context, itemURL string) (*domain.VideoMetadata, error)
}

// CatalogUpserter persists metadata from a direct add-by-url.
type CatalogUpserter interface {
	UpsertFromURL(ctx context.Context, meta *domain.VideoMetadata) (*domain.Video, error)
}

type VideoHandler struct {
	videos    VideoLister
	extractor DetailExtractor
	catalog   CatalogUpserter
	logger    logger.Logger
}

func NewVideoHandler(videos VideoLister, extractor DetailExtractor, catalog CatalogUpserter, log logger.Logger) *VideoHandler {
	return &VideoHandler{
		videos:    videos,
		extractor: extractor,
		catalog:   catalog,
		logger:    log,
	}
}

// List returns catalog videos, optionally filtered by title substring,
// short-form flag, minimum view count and maximum duration.
func (h *VideoHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videos, err := h.videos.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "list videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"count":  len(videos),
	})
}

type addByURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// AddByURL extracts metadata for a single item URL and adds or refreshes it
// in the catalog. Extraction runs inline, so the response carries the
// stored record.
func (h *VideoHandler) AddByURL(c *gin.Context) {
	var req addByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	meta, err := h.extractor.ExtractDetail(c.Request.Context(), req.URL)
	if err != nil {
		h.logger.Warn("Extraction failed for add-by-url",
			logger.String("url", req.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to extract video metadata"})
		return
	}

	video, err := h.catalog.UpsertFromURL(c.Request.Context(), meta)
	if err != nil {
		respondError(c, h.logger, err, "add video")
		return
	}

	h.logger.Info("Video added by url",
		logger.String("video_id", video.VideoID),
	)

	c.JSON(http.StatusCreated, video)
}

func parseListFilter(c *gin.Context) (repository.ListFilter, error) {
	filter := repository.ListFilter{Query: c.Query("q")}

	if raw := c.Query("is_short"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid query parameter: is_short")
		}
		filter.IsShort = &v
	}
	if raw := c.Query("min_views"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return filter, fmt.Errorf("invalid query parameter: min_views")
		}
		filter.MinViews = &v
	}
	if raw := c.Query("max_duration"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return filter, fmt.Errorf("invalid query parameter: max_duration")
		}
		filter.MaxDuration = &v
	}

	return filter, nil
}

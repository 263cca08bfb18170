package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/logger"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	redis  Pinger
	logger logger.Logger
}

func NewHealthHandler(db, redis Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, logger: log}
}

// Check reports service health, degrading to 503 when a dependency is down.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Database health check failed", logger.Error(err))
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Redis health check failed", logger.Error(err))
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{"status": overall, "checks": checks})
}

// Package handlers contains the gin HTTP handlers for the catalog API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// respondError maps domain errors onto HTTP status codes. Unknown errors
// are logged and reported as a generic 500 so internals never leak.
func respondError(c *gin.Context, log logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Request failed",
			logger.String("action", action),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// Package api wires the gin router for the catalog service.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/config"
	"github.com/jonesrussell/video-catalog/internal/handlers"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

const (
	corsMaxAgeHours = 12
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Videos    *handlers.VideoHandler
	Downloads *handlers.DownloadHandler
	Scans     *handlers.ScanHandler
	Health    *handlers.HealthHandler
}

func NewRouter(h Handlers, cfg *config.Config, log logger.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// CORS middleware - must be first
	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"X-API-Key", "accept", "origin", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}))

	// Middleware
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check stays outside the API-key gate
	router.GET("/health", h.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(apiKeyAuth(cfg.Auth.APIKey))

	// Videos endpoints
	videos := v1.Group("/videos")
	videos.GET("", h.Videos.List)
	videos.POST("/by_url", h.Videos.AddByURL)
	videos.GET("/:id/download", h.Downloads.LatestForVideo)

	// Downloads endpoints
	downloads := v1.Group("/downloads")
	downloads.POST("", h.Downloads.Create)
	downloads.GET("/:id", h.Downloads.GetByID)
	downloads.GET("/:id/file", h.Downloads.File)
	downloads.POST("/by_videos", h.Downloads.ByVideos)

	// Scans endpoints
	scans := v1.Group("/scans")
	scans.POST("", h.Scans.Create)
	scans.GET("/:id", h.Scans.GetByID)

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", statusCode),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", duration),
		)
	}
}

package bootstrap

import (
	"github.com/jonesrussell/video-catalog/internal/config"
	"github.com/jonesrussell/video-catalog/internal/database"
	"github.com/jonesrussell/video-catalog/internal/logger"
)

// SetupDatabase connects to PostgreSQL and ensures the schema exists.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*database.DB, error) {
	return database.New(cfg, log)
}

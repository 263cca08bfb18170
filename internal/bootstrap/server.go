package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/video-catalog/internal/api"
	"github.com/jonesrussell/video-catalog/internal/catalog"
	"github.com/jonesrussell/video-catalog/internal/config"
	"github.com/jonesrussell/video-catalog/internal/database"
	"github.com/jonesrussell/video-catalog/internal/handlers"
	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/orchestrator"
	"github.com/jonesrussell/video-catalog/internal/queue"
	"github.com/jonesrussell/video-catalog/internal/repository"
	"github.com/jonesrussell/video-catalog/internal/ytdlp"
)

// SetupRouter assembles repositories, orchestrators and handlers into the
// API router.
func SetupRouter(
	cfg *config.Config,
	db *database.DB,
	streams *queue.StreamsClient,
	log logger.Logger,
) *gin.Engine {
	videoRepo := repository.NewVideoRepository(db.DB())
	downloadRepo := repository.NewDownloadJobRepository(db.DB())
	scanRepo := repository.NewScanJobRepository(db.DB())

	producer := queue.NewProducer(streams, queue.ProducerConfig{})
	extractor := ytdlp.NewClient(ytdlp.Config{BinaryPath: cfg.Media.YtDlpPath}, log)
	catalogSvc := catalog.NewService(videoRepo, log)

	downloadOrch := orchestrator.NewDownloadOrchestrator(videoRepo, downloadRepo, producer, log)
	scanOrch := orchestrator.NewScanOrchestrator(scanRepo, producer, cfg.Scan.MaxItemsCap, log)

	return api.NewRouter(api.Handlers{
		Videos:    handlers.NewVideoHandler(videoRepo, extractor, catalogSvc, log),
		Downloads: handlers.NewDownloadHandler(downloadOrch, downloadRepo, log),
		Scans:     handlers.NewScanHandler(scanOrch, scanRepo, log),
		Health:    handlers.NewHealthHandler(db, streams, log),
	}, cfg, log)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/config"
	"github.com/jengzang/fieldtrack-backend-go/internal/handler"
	"github.com/jengzang/fieldtrack-backend-go/internal/middleware"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
)

// Services groups everything the HTTP layer calls into
type Services struct {
	Ingest     *service.IngestService
	Event      *service.EventService
	Timeline   *service.TimelineService
	Checkpoint *service.CheckpointService
}

// SetupRouter builds the gin engine. limiter guards the fix upload route.
func SetupRouter(cfg *config.Config, svc Services, limiter *middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "FieldTrack API is running",
		})
	})

	ingestHandler := handler.NewIngestHandler(svc.Ingest)
	eventHandler := handler.NewEventHandler(svc.Event)
	timelineHandler := handler.NewTimelineHandler(svc.Timeline)
	checkpointHandler := handler.NewCheckpointHandler(svc.Checkpoint)

	api := r.Group("/api/v1")
	{
		subjects := api.Group("/subjects/:subjectId")
		{
			subjects.POST("/fixes",
				middleware.DeviceAuth(cfg.JWTSecret),
				middleware.RateLimit(limiter, middleware.SubjectKey),
				ingestHandler.PostFixes)
			subjects.POST("/events", middleware.DeviceAuth(cfg.JWTSecret), eventHandler.PostEvent)
			subjects.GET("/timeline", timelineHandler.GetTimeline)
			subjects.GET("/timeline/export", timelineHandler.ExportTimeline)
			subjects.GET("/stops", timelineHandler.GetStops)
		}

		checkpoints := api.Group("/checkpoints/:checkpointId")
		{
			checkpoints.GET("", checkpointHandler.GetCheckpoint)
			checkpoints.PUT("", checkpointHandler.PutCheckpoint)
			checkpoints.POST("/verify", checkpointHandler.Verify)
		}
	}

	return r
}

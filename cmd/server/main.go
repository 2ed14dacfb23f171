package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/analysis"
	"github.com/jengzang/fieldtrack-backend-go/internal/api"
	"github.com/jengzang/fieldtrack-backend-go/internal/config"
	"github.com/jengzang/fieldtrack-backend-go/internal/database"
	"github.com/jengzang/fieldtrack-backend-go/internal/ingest"
	"github.com/jengzang/fieldtrack-backend-go/internal/logger"
	"github.com/jengzang/fieldtrack-backend-go/internal/middleware"
	"github.com/jengzang/fieldtrack-backend-go/internal/repository"
	"github.com/jengzang/fieldtrack-backend-go/internal/service"
	"github.com/jengzang/fieldtrack-backend-go/internal/source"
)

func main() {
	// 加载配置
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "fieldtrack-backend")
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath}, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, log).RunMigrations(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	samples := repository.NewSampleRepository(db)
	events := repository.NewEventRepository(db)
	checkpoints := repository.NewCheckpointRepository(db)

	var cursors ingest.CursorStore = ingest.NewSampleCursorStore(samples)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		cursors = ingest.NewRedisCursorStore(rdb, cfg.Redis.KeyPrefix)
		log.Info("ingest cursors stored in redis", zap.String("addr", cfg.Redis.Addr))
	}

	ingestor := ingest.NewIngestor(ingest.OptionsFromConfig(cfg.Engine), samples, cursors, log.Named("ingest"))
	detector := analysis.NewStopDetector(analysis.StopOptions{
		MovementThresholdMeters: cfg.Engine.MovementThresholdMeters,
		MinStopDuration:         cfg.Engine.MinStopDuration,
	}, log.Named("stops"))

	svc := api.Services{
		Ingest:     service.NewIngestService(ingestor),
		Event:      service.NewEventService(events),
		Timeline:   service.NewTimelineService(samples, events, checkpoints, detector, cfg.Location(), cfg.Engine.GeofenceToleranceMeters, log.Named("timeline")),
		Checkpoint: service.NewCheckpointService(checkpoints, cfg.Engine.GeofenceToleranceMeters),
	}

	if cfg.MQTT.Broker != "" {
		src, err := source.NewMQTTSource(cfg.MQTT, log.Named("mqtt"))
		if err != nil {
			log.Fatal("failed to start MQTT source", zap.Error(err))
		}
		defer src.Close()

		trackOpts := ingest.TrackOptions{
			HeartbeatInterval: cfg.Engine.HeartbeatInterval,
			FixTimeout:        cfg.Engine.FixTimeout,
		}
		for _, subjectID := range cfg.MQTT.TrackedSubjects {
			tracker := ingestor.Track(ctx, subjectID, src, trackOpts)
			defer tracker.Stop()
		}
		log.Info("live tracking started", zap.Strings("subjects", cfg.MQTT.TrackedSubjects))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	// 初始化路由
	router := api.SetupRouter(cfg, svc, limiter, log.Named("http"))

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/progressio/prediction-engine/internal/config"
	"github.com/progressio/prediction-engine/internal/database"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/alerts"
	"github.com/progressio/prediction-engine/internal/modules/features"
	"github.com/progressio/prediction-engine/internal/modules/predictions"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training"
	"github.com/progressio/prediction-engine/internal/modules/validation"
	"github.com/progressio/prediction-engine/internal/scheduler"
	"github.com/progressio/prediction-engine/internal/server"
	"github.com/progressio/prediction-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting prediction engine")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(
		features.InitSchema,
		registry.InitSchema,
		predictions.InitSchema,
		alerts.InitSchema,
		validation.InitSchema,
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize artifact store
	store, err := training.NewArtifactStore(cfg.ArtifactsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize artifact store")
	}

	// Initialize events and metrics
	eventManager := events.NewManager(log)
	m, err := metrics.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		Events:  eventManager,
		Metrics: m,
		Store:   store,
		DevMode: cfg.DevMode,
	})

	// Initialize scheduler and register the prediction expiry sweep
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	expirySweep := scheduler.NewExpirySweep(srv.Predictions, eventManager, log)
	if err := sched.AddJob(cfg.ExpirySweepSchedule, expirySweep); err != nil {
		log.Fatal().Err(err).Msg("Failed to register expiry sweep")
	}

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

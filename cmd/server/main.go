package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shelflife/internal/config"
	"shelflife/internal/db"
	"shelflife/internal/deletion"
	"shelflife/internal/jobs"
	"shelflife/internal/logging"
	"shelflife/internal/metrics"
	"shelflife/internal/server"
	"shelflife/internal/services/overseerr"
	"shelflife/internal/services/radarr"
	"shelflife/internal/services/sonarr"
	"shelflife/internal/services/tautulli"
	syncer "shelflife/internal/sync"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	logger.Info("Migrations completed")

	overseerrClient, err := overseerr.NewClient(cfg.OverseerrURL, cfg.OverseerrAPIKey, logger)
	if err != nil {
		logger.WithError(err).Fatal("Overseerr configuration is required")
	}

	var tautulliClient *tautulli.Client
	if cfg.TautulliURL != "" {
		tautulliClient, err = tautulli.NewClient(cfg.TautulliURL, cfg.TautulliAPIKey, logger)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Tautulli configuration")
		}
	} else {
		logger.Warn("Tautulli is not configured; user sync and watch history are disabled")
	}

	// Arr clients are optional; the deletion flow skips an unconfigured
	// service. A typed nil must not reach the interface fields.
	var seriesService deletion.SeriesService
	if cfg.SonarrURL != "" {
		sonarrClient, err := sonarr.NewClient(cfg.SonarrURL, cfg.SonarrAPIKey, logger)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Sonarr configuration")
		}
		seriesService = sonarrClient
	} else {
		logger.Warn("Sonarr is not configured; series deletions are disabled")
	}

	var movieService deletion.MovieService
	if cfg.RadarrURL != "" {
		radarrClient, err := radarr.NewClient(cfg.RadarrURL, cfg.RadarrAPIKey, logger)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Radarr configuration")
		}
		movieService = radarrClient
	} else {
		logger.Warn("Radarr is not configured; movie deletions are disabled")
	}

	orchestrator := deletion.NewOrchestrator(database, seriesService, movieService, overseerrClient, logger)

	var userSource syncer.UserSource
	if tautulliClient != nil {
		userSource = tautulliClient
	}
	reconciler := syncer.NewReconciler(database, overseerrClient, userSource, cfg.AdminPlexIDs, logger)

	metrics.Init(database)

	scheduler := jobs.NewSyncScheduler(reconciler, cfg.SyncInterval, logger)
	go scheduler.Start(ctx)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, orchestrator, reconciler, tautulliClient, logger); err != nil {
		logger.WithError(err).Fatal("Failed to register routes")
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Info("Shutting down")
		cancel()
		if err := srv.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithField("addr", cfg.ServerAddr).Info("Starting server")
	if err := srv.Start(); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}

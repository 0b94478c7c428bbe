package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/nsqipdash/internal/config"
	"github.com/JonMunkholm/nsqipdash/internal/core"
	_ "github.com/JonMunkholm/nsqipdash/internal/core/formats" // Register file readers
	"github.com/JonMunkholm/nsqipdash/internal/logging"
	"github.com/JonMunkholm/nsqipdash/internal/metrics"
	"github.com/JonMunkholm/nsqipdash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	service := core.NewService(core.ServiceConfig{
		ChunkSize:     cfg.Upload.ChunkSize,
		MaxFileSize:   int64(cfg.Upload.MaxFileSize),
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		UploadTimeout: cfg.Upload.Timeout,
		SessionTTL:    cfg.Session.TTL,
		Columns: core.DatasetColumns{
			Specialty: cfg.Dataset.SpecialtyColumn,
			Code:      cfg.Dataset.CodeColumn,
			Sex:       cfg.Dataset.SexColumn,
		},
	})

	formats := core.Formats()
	slog.Info("file readers registered", "count", len(formats), "extensions", core.AcceptedExtensions())

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	server := web.NewServer(cfg, service, m)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go core.StartSessionSweeper(jobCtx, service.Sessions(), cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for uploads being parsed to finish
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

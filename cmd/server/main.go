package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/dataset"
	"github.com/JonMunkholm/PriceView/internal/logging"
	"github.com/JonMunkholm/PriceView/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logFile := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		MaxBackups: cfg.Logging.FileMaxBackups,
		MaxAgeDays: cfg.Logging.FileMaxAgeDays,
	})
	defer logFile.Close()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset_source", cfg.Dataset.Source,
		"report_endpoint", cfg.Report.Endpoint,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	ds, err := dataset.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	store := core.NewRecordStore(ds)
	inflight := core.NewInflight()
	reporter := core.NewReporter(store, core.ReporterOptions{
		Client:         &http.Client{Timeout: cfg.Report.Timeout},
		Endpoint:       cfg.Report.Endpoint,
		DefaultSubject: cfg.Report.DefaultSubject,
		Inflight:       inflight,
	})

	server := web.NewServer(cfg, store, reporter, inflight)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Reports already posted keep going after the listener closes
		if err := server.WaitForReports(shutdownCtx); err != nil {
			slog.Warn("report sends did not complete in time", "error", err)
		}
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nxfleet/profilesync/internal/app"
	"github.com/nxfleet/profilesync/internal/config"
	"github.com/nxfleet/profilesync/internal/telemetry"
)

func main() {
	cfg := config.Load()

	// Setup Structured Logging
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize Tracing
	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("profilesync starting",
		"profile", cfg.Profile,
		"first_port", cfg.FirstPort,
		"last_port", cfg.LastPort,
		"dry_run", cfg.DryRun)

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		cancel()
		os.Exit(1)
	}
}

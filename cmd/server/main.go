package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	_ "github.com/JonMunkholm/tableview/internal/dataset/tables" // Register all datasets
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/source"
	"github.com/JonMunkholm/tableview/internal/web"
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
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit", cfg.Security.RateLimit,
		"api_key_required", cfg.Security.RequireAPIKey,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	// Connect to the row source
	ctx := context.Background()
	src, err := source.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open row source", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	if err := src.Migrate(ctx, dataset.All(), cfg.Database.Seed); err != nil {
		slog.Error("failed to migrate datasets", "error", err)
		os.Exit(1)
	}

	// Log registered datasets
	slog.Info("datasets registered", "count", dataset.Count())
	for _, def := range dataset.All() {
		slog.Debug("dataset", "key", def.Info.Key, "group", def.Info.Group, "columns", def.Schema.Len())
	}

	server := web.NewServer(cfg, source.WithTimeout(src, cfg.Database.QueryTimeout))

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stops accepting requests, then waits for running exports
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

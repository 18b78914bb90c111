package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	_ "github.com/JonMunkholm/tableview/internal/dataset/tables" // Register all datasets
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/source"
	"github.com/JonMunkholm/tableview/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment and defaults apply
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// The terminal is the UI, so logs go to a file
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logging.SetupWriter(logFile, cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	src, err := source.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open row source: %w", err)
	}
	defer src.Close()

	defs := dataset.All()
	if err := src.Migrate(ctx, defs, cfg.Database.Seed); err != nil {
		return fmt.Errorf("migrate datasets: %w", err)
	}

	model, err := tui.New(cfg, source.WithTimeout(src, cfg.Database.QueryTimeout), defs)
	if err != nil {
		return err
	}

	slog.Info("tui starting", "datasets", len(defs), "driver", cfg.Database.Driver, "export_dir", cfg.Export.Dir)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

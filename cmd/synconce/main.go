// Command synconce runs a single synchronization cycle and exits.
// The exit status is non-zero when the cycle was aborted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/pricesync/internal/app"
	"github.com/rickgao/pricesync/internal/config"
	"github.com/rickgao/pricesync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/pricesync.yaml", "path to config file")
	pages := flag.Int("pages", 0, "override the page cap for this run and persist it")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if l, err := app.NewLogger(cfg.Log.Level); err == nil {
		logger = l
	}
	slog.SetDefault(logger)

	logger.Info("starting synconce",
		"version", version.String(),
		"config", *configPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Store.Close()

	if *pages > 0 {
		if err := a.Pages.Store(*pages); err != nil {
			logger.Error("failed to write page cap", "error", err)
			os.Exit(1)
		}
	}

	report, err := a.Scheduler.RunCycle(ctx)
	if err != nil {
		logger.Error("cycle failed", "cycle_id", report.ID, "error", err)
		a.Store.Close()
		os.Exit(1)
	}

	logger.Info("cycle finished",
		"cycle_id", report.ID,
		"instruments", report.Instruments,
		"synced", report.Prices.Synced,
		"partial", report.Prices.Partial,
		"empty", report.Prices.Empty,
		"failed", report.Prices.Failed,
		"rows_merged", report.Prices.RowsMerged,
		"duration", report.Duration,
	)
}

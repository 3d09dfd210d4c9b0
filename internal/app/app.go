// Package app wires the syncer components from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/clock"
	"github.com/rickgao/pricesync/internal/config"
	"github.com/rickgao/pricesync/internal/database"
	"github.com/rickgao/pricesync/internal/market"
	"github.com/rickgao/pricesync/internal/poller"
	"github.com/rickgao/pricesync/internal/scheduler"
	"github.com/rickgao/pricesync/internal/store"
)

// App holds the wired components of one syncer process.
type App struct {
	Store     store.Store
	Client    *api.Client
	Registry  *market.Registry
	Poller    *poller.Poller
	Pages     *config.PageCapFile
	Scheduler *scheduler.Scheduler
}

// NewLogger returns a text logger on stdout at the configured level.
func NewLogger(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})), nil
}

// OpenStore connects to the configured database and ensures the schema.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("connecting to database",
			"driver", cfg.Driver,
			"host", cfg.Postgres.Host,
			"port", cfg.Postgres.Port,
			"database", cfg.Postgres.Name,
		)
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgres(pool), nil

	case config.DriverSQLite:
		logger.Info("opening database", "driver", cfg.Driver, "path", cfg.SQLite.Path)
		return store.OpenSQLite(ctx, cfg.SQLite.Path)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// New opens the store and builds every component. The caller owns
// a.Store and must close it.
func New(ctx context.Context, cfg *config.SyncerConfig, logger *slog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	hour, minute, err := config.ParseAnchor(cfg.Scheduler.AnchorTime)
	if err != nil {
		st.Close()
		return nil, err
	}

	client := api.NewClient(
		cfg.API.PriceURL,
		api.WithCatalogURL(cfg.API.CatalogURL),
		api.WithPageSize(cfg.API.PageSize),
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	registry := market.NewRegistry(client, st, clock.Real{}, logger)

	p := poller.New(poller.Config{
		Concurrency:       cfg.Sync.Concurrency,
		InstrumentTimeout: cfg.Sync.InstrumentTimeout,
		MergeTimeout:      cfg.Sync.MergeTimeout,
	}, client, st, logger)

	pages := config.NewPageCapFile(cfg.Sync.PagesFile, cfg.Sync.DefaultPages, logger)

	sched := scheduler.New(scheduler.Config{
		Anchor:     scheduler.Anchor{Hour: hour, Minute: minute},
		RunOnStart: cfg.Scheduler.RunOnStart == nil || *cfg.Scheduler.RunOnStart,
	}, registry, p, pages, clock.Real{}, logger)

	return &App{
		Store:     st,
		Client:    client,
		Registry:  registry,
		Poller:    p,
		Pages:     pages,
		Scheduler: sched,
	}, nil
}

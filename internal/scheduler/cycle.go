package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/pricesync/internal/poller"
)

// Report summarizes one cycle.
type Report struct {
	ID               string
	StartedAt        time.Time
	CatalogRefreshed bool
	CatalogErr       string
	Instruments      int
	PageCap          int
	Prices           poller.Report
	Duration         time.Duration
}

// RunCycle runs one full synchronization cycle. A catalog failure is logged
// and the cycle continues with the persisted catalog. The returned error is
// non-nil only when price synchronization was aborted.
func (s *Scheduler) RunCycle(ctx context.Context) (Report, error) {
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: s.clock.Now(),
	}
	logger := s.logger.With("cycle_id", report.ID)
	start := time.Now()

	logger.Info("sync cycle started")

	refreshed, err := s.catalog.RefreshIfStale(ctx)
	report.CatalogRefreshed = refreshed
	if err != nil {
		report.CatalogErr = err.Error()
		logger.Warn("catalog refresh failed", "err", err)
	}

	instruments := s.catalog.Instruments()
	report.Instruments = len(instruments)
	report.PageCap = s.pages.Load()

	prices, err := s.prices.SyncAll(ctx, instruments, report.PageCap)
	report.Prices = prices
	report.Duration = time.Since(start)

	if err != nil {
		logger.Error("sync cycle aborted", "err", err, "duration", report.Duration)
		return report, fmt.Errorf("cycle %s: %w", report.ID, err)
	}

	logger.Info("sync cycle complete",
		"catalog_refreshed", refreshed,
		"instruments", report.Instruments,
		"page_cap", report.PageCap,
		"synced", prices.Synced,
		"failed", prices.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

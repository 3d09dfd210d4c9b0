package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
)

var (
	// ErrNoData is recorded for instruments whose first page was empty or
	// held no valid rows.
	ErrNoData = errors.New("no price data")

	// ErrStoreUnavailable aborts a cycle when a merge fails and the store
	// does not answer a ping.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PriceSource fetches one page of an instrument's daily prices, newest first.
type PriceSource interface {
	GetDailyPrices(ctx context.Context, code string, page int) ([]api.APIDailyPrice, error)
}

// PriceStore persists daily prices.
type PriceStore interface {
	MergeDailyPrices(ctx context.Context, code string, rows []model.DailyPrice) (int64, error)
	Ping(ctx context.Context) error
}

// Config holds poller configuration.
type Config struct {
	Concurrency       int           // Max instruments in flight (default: 4)
	InstrumentTimeout time.Duration // Per-instrument fetch budget (default: 5m)
	MergeTimeout      time.Duration // Per-instrument merge budget, starts after the fetch (default: 1m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:       4,
		InstrumentTimeout: 5 * time.Minute,
		MergeTimeout:      time.Minute,
	}
}

// Report summarizes one SyncAll call.
type Report struct {
	Instruments int
	Synced      int
	Partial     int
	Empty       int
	Failed      int
	Pages       int
	RowsMerged  int64
	RowsDropped int
	Duration    time.Duration
}

// Poller synchronizes daily prices for a set of instruments.
type Poller struct {
	cfg    Config
	source PriceSource
	store  PriceStore
	logger *slog.Logger
}

// New creates a new Poller.
func New(cfg Config, source PriceSource, store PriceStore, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.MergeTimeout <= 0 {
		cfg.MergeTimeout = DefaultConfig().MergeTimeout
	}
	return &Poller{
		cfg:    cfg,
		source: source,
		store:  store,
		logger: logger,
	}
}

// SyncAll fetches and merges up to pageCap pages for every instrument.
// Instruments are started in code order. A single instrument's failure is
// counted in the report and never stops the others; the returned error is
// ErrStoreUnavailable or a context error.
//
// Cancelling ctx stops new instruments from starting. Instruments already
// in flight run to completion, bounded by their own timeouts.
func (p *Poller) SyncAll(ctx context.Context, instruments []model.Instrument, pageCap int) (Report, error) {
	start := time.Now()
	if pageCap < 1 {
		pageCap = 1
	}

	ordered := make([]model.Instrument, len(instruments))
	copy(ordered, instruments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Code < ordered[j].Code })

	var (
		mu     sync.Mutex
		report = Report{Instruments: len(ordered)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, in := range ordered {
		if gctx.Err() != nil {
			break
		}
		in := in
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			res := p.syncInstrument(context.WithoutCancel(gctx), in.Code, pageCap)

			mu.Lock()
			report.add(res)
			mu.Unlock()

			if res.mergeFailed && gctx.Err() == nil {
				pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if err := p.store.Ping(pctx); err != nil {
					return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report.Duration = time.Since(start)

	p.logger.Info("price sync complete",
		"instruments", report.Instruments,
		"synced", report.Synced,
		"partial", report.Partial,
		"empty", report.Empty,
		"failed", report.Failed,
		"pages", report.Pages,
		"rows_merged", report.RowsMerged,
		"rows_dropped", report.RowsDropped,
		"duration", report.Duration,
	)

	return report, err
}

type status int

const (
	statusSynced status = iota
	statusPartial
	statusEmpty
	statusFailed
)

type result struct {
	status      status
	pages       int
	merged      int64
	dropped     int
	mergeFailed bool
}

func (r *Report) add(res result) {
	switch res.status {
	case statusSynced:
		r.Synced++
	case statusPartial:
		r.Partial++
	case statusEmpty:
		r.Empty++
	case statusFailed:
		r.Failed++
	}
	r.Pages += res.pages
	r.RowsMerged += res.merged
	r.RowsDropped += res.dropped
}

// syncInstrument fetches pages in order and merges what it got. The merge
// gets its own deadline so rows fetched before a fetch timeout are kept.
func (p *Poller) syncInstrument(ctx context.Context, code string, pageCap int) result {
	fetchCtx := ctx
	if p.cfg.InstrumentTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.cfg.InstrumentTimeout)
		defer cancel()
	}

	logger := p.logger.With("code", code)

	rows, res, fetchErr := p.fetchAll(fetchCtx, code, pageCap)
	if len(rows) == 0 {
		switch {
		case fetchErr != nil:
			logger.Warn("failed to fetch prices", "err", fetchErr)
			res.status = statusFailed
		default:
			logger.Debug("no price data", "err", ErrNoData, "dropped", res.dropped)
			res.status = statusEmpty
		}
		return res
	}

	mergeCtx, cancel := context.WithTimeout(ctx, p.cfg.MergeTimeout)
	defer cancel()

	n, err := p.store.MergeDailyPrices(mergeCtx, code, rows)
	if err != nil {
		logger.Error("failed to merge prices", "rows", len(rows), "err", err)
		res.status = statusFailed
		res.mergeFailed = true
		return res
	}
	res.merged = n

	if fetchErr != nil {
		logger.Warn("merged partial price history",
			"pages", res.pages,
			"rows", n,
			"err", fetchErr,
		)
		res.status = statusPartial
		return res
	}

	logger.Debug("synced prices", "pages", res.pages, "rows", n, "dropped", res.dropped)
	res.status = statusSynced
	return res
}

// fetchAll walks pages 1..pageCap and stops at the first empty page or
// error. Rows are deduplicated by date; the first one fetched wins.
func (p *Poller) fetchAll(ctx context.Context, code string, pageCap int) ([]model.DailyPrice, result, error) {
	var (
		res  result
		rows []model.DailyPrice
		seen = make(map[string]struct{})
	)

	for page := 1; page <= pageCap; page++ {
		raw, err := p.source.GetDailyPrices(ctx, code, page)
		if err != nil {
			return rows, res, fmt.Errorf("page %d: %w", page, err)
		}
		if len(raw) == 0 {
			break
		}
		res.pages++

		normalized, dropped := api.NormalizePage(code, raw)
		res.dropped += dropped

		for _, r := range normalized {
			key := model.FormatDate(r.Date)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rows = append(rows, r)
		}
	}

	return rows, res, nil
}

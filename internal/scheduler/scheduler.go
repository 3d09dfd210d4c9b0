package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/pricesync/internal/clock"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/poller"
)

// CatalogRefresher keeps the instrument snapshot current.
type CatalogRefresher interface {
	RefreshIfStale(ctx context.Context) (bool, error)
	Instruments() []model.Instrument
}

// PriceSyncer synchronizes prices for a set of instruments.
type PriceSyncer interface {
	SyncAll(ctx context.Context, instruments []model.Instrument, pageCap int) (poller.Report, error)
}

// PageCap supplies the per-instrument page cap for a cycle.
type PageCap interface {
	Load() int
}

// Config holds scheduler configuration.
type Config struct {
	Anchor     Anchor
	RunOnStart bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Anchor:     DefaultAnchor,
		RunOnStart: true,
	}
}

// State is the scheduler's position in its loop.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateScheduled State = "scheduled"
)

// Status is a point-in-time view of the scheduler.
type Status struct {
	State      State     `json:"state"`
	NextRun    time.Time `json:"next_run,omitzero"`
	LastReport *Report   `json:"last_report,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

// Scheduler runs cycles back to back, one at a time, at the anchor time
// of each following day.
type Scheduler struct {
	cfg     Config
	catalog CatalogRefresher
	prices  PriceSyncer
	pages   PageCap
	clock   clock.Clock
	logger  *slog.Logger

	mu     sync.RWMutex
	status Status

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Scheduler.
func New(cfg Config, catalog CatalogRefresher, prices PriceSyncer, pages PageCap, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:     cfg,
		catalog: catalog,
		prices:  prices,
		pages:   pages,
		clock:   clk,
		logger:  logger,
		status:  Status{State: StateIdle},
	}
}

// Status returns the current status.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Run loops until ctx is cancelled. A cycle in progress when ctx is
// cancelled returns before Run does.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.setIdle()

	if s.cfg.RunOnStart {
		s.cycle(ctx)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		now := s.clock.Now()
		next := NextRun(now, s.cfg.Anchor)
		wait := max(next.Sub(now), 0)

		s.mu.Lock()
		s.status.State = StateScheduled
		s.status.NextRun = next
		s.mu.Unlock()

		s.logger.Info("next sync scheduled", "at", next, "in", wait)

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(wait):
		}

		s.cycle(ctx)
	}
}

// cycle runs one cycle and records its outcome. Aborted cycles are
// retried at the next trigger.
func (s *Scheduler) cycle(ctx context.Context) {
	s.mu.Lock()
	s.status.State = StateRunning
	s.status.NextRun = time.Time{}
	s.mu.Unlock()

	report, err := s.RunCycle(ctx)

	s.mu.Lock()
	s.status.LastReport = &report
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()
}

func (s *Scheduler) setIdle() {
	s.mu.Lock()
	s.status.State = StateIdle
	s.status.NextRun = time.Time{}
	s.mu.Unlock()
}

// Start runs the loop in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()

	s.logger.Info("scheduler started",
		"anchor", s.cfg.Anchor.String(),
		"run_on_start", s.cfg.RunOnStart,
	)
	return nil
}

// Stop cancels the loop and waits for the running cycle to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

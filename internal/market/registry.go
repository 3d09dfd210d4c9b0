package market

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/clock"
	"github.com/rickgao/pricesync/internal/model"
)

// CatalogSource fetches the full remote instrument catalog.
type CatalogSource interface {
	GetCatalog(ctx context.Context) ([]api.CatalogEntry, error)
}

// CatalogStore persists catalog snapshots.
type CatalogStore interface {
	LastCatalogUpdate(ctx context.Context) (time.Time, bool, error)
	LoadInstruments(ctx context.Context) ([]model.Instrument, error)
	UpsertInstruments(ctx context.Context, instruments []model.Instrument) error
}

// Registry owns the in-memory instrument map. The map is replaced
// wholesale on every rebuild; readers always see a complete snapshot.
type Registry struct {
	source CatalogSource
	store  CatalogStore
	clock  clock.Clock
	logger *slog.Logger

	mu          sync.RWMutex
	instruments []model.Instrument
	byCode      map[string]model.Instrument
	lastRefresh time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry(source CatalogSource, store CatalogStore, clk clock.Clock, logger *slog.Logger) *Registry {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		source: source,
		store:  store,
		clock:  clk,
		logger: logger,
		byCode: map[string]model.Instrument{},
	}
}

// Instruments returns the current snapshot sorted by code. The returned
// slice must not be modified.
func (r *Registry) Instruments() []model.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instruments
}

// Lookup returns the instrument with the given code.
func (r *Registry) Lookup(code string) (model.Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.byCode[model.NormalizeCode(code)]
	return in, ok
}

// Len returns the number of instruments in the snapshot.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}

// LastRefresh returns when the catalog was last fetched from the remote
// source by this process. Zero if it never was.
func (r *Registry) LastRefresh() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRefresh
}

// replace installs a new snapshot. instruments is owned by the registry
// afterwards.
func (r *Registry) replace(instruments []model.Instrument) {
	sort.Slice(instruments, func(i, j int) bool {
		return instruments[i].Code < instruments[j].Code
	})

	byCode := make(map[string]model.Instrument, len(instruments))
	for _, in := range instruments {
		byCode[in.Code] = in
	}

	r.mu.Lock()
	r.instruments = instruments
	r.byCode = byCode
	r.mu.Unlock()
}

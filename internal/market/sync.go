package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/pricesync/internal/model"
)

// RefreshIfStale refreshes the catalog when the persisted one predates
// today's local calendar date, and otherwise loads the persisted one.
// It reports whether a remote refresh happened.
//
// A remote failure is returned but leaves the registry populated from the
// persisted catalog, so callers may log it and carry on.
func (r *Registry) RefreshIfStale(ctx context.Context) (bool, error) {
	now := r.clock.Now()
	today := model.DateOf(now)

	last, ok, err := r.store.LastCatalogUpdate(ctx)
	if err != nil {
		return false, fmt.Errorf("read last catalog update: %w", err)
	}

	if ok && model.FormatDate(last) >= model.FormatDate(today) {
		r.logger.Debug("catalog is current", "last_update", model.FormatDate(last))
		if err := r.loadPersisted(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	r.logger.Info("refreshing catalog",
		"last_update", lastUpdateAttr(last, ok),
		"today", model.FormatDate(today),
	)
	start := time.Now()

	entries, err := r.source.GetCatalog(ctx)
	if err != nil {
		r.logger.Warn("catalog fetch failed, using persisted catalog", "err", err)
		if lerr := r.loadPersisted(ctx); lerr != nil {
			return false, errors.Join(fmt.Errorf("fetch catalog: %w", err), lerr)
		}
		return false, fmt.Errorf("fetch catalog: %w", err)
	}

	instruments := make([]model.Instrument, len(entries))
	for i, e := range entries {
		instruments[i] = model.Instrument{
			Code:              e.Code,
			Name:              e.Name,
			LastCatalogUpdate: today,
		}
	}

	// Persist from a copy; replace takes ownership of instruments.
	persisted := make([]model.Instrument, len(instruments))
	copy(persisted, instruments)

	r.replace(instruments)
	r.mu.Lock()
	r.lastRefresh = now
	r.mu.Unlock()

	if err := r.store.UpsertInstruments(ctx, persisted); err != nil {
		return true, fmt.Errorf("persist catalog: %w", err)
	}

	r.logger.Info("catalog refreshed",
		"instruments", len(persisted),
		"duration", time.Since(start),
	)
	return true, nil
}

// loadPersisted rebuilds the map from the most recent persisted snapshot.
// Instruments missing from that snapshot were delisted and are left out.
func (r *Registry) loadPersisted(ctx context.Context) error {
	all, err := r.store.LoadInstruments(ctx)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}

	latest := ""
	for _, in := range all {
		if d := model.FormatDate(in.LastCatalogUpdate); d > latest {
			latest = d
		}
	}

	current := make([]model.Instrument, 0, len(all))
	for _, in := range all {
		if model.FormatDate(in.LastCatalogUpdate) == latest {
			current = append(current, in)
		}
	}

	r.replace(current)
	r.logger.Debug("loaded persisted catalog",
		"instruments", len(current),
		"stored", len(all),
	)
	return nil
}

func lastUpdateAttr(last time.Time, ok bool) string {
	if !ok {
		return "never"
	}
	return model.FormatDate(last)
}

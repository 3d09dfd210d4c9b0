package store

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/pricesync/internal/model"
)

// ErrUnknownInstrument is returned when an identifier matches no instrument.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Store is the persistence contract shared by all backends.
type Store interface {
	// LastCatalogUpdate returns the most recent catalog refresh date.
	// ok is false when the catalog table is empty.
	LastCatalogUpdate(ctx context.Context) (date time.Time, ok bool, err error)

	// LoadInstruments returns every stored instrument ordered by code.
	LoadInstruments(ctx context.Context) ([]model.Instrument, error)

	// UpsertInstruments merges instruments in one transaction.
	UpsertInstruments(ctx context.Context, instruments []model.Instrument) error

	// MergeDailyPrices merges one instrument's rows in one transaction and
	// returns the number of rows written.
	MergeDailyPrices(ctx context.Context, code string, rows []model.DailyPrice) (int64, error)

	// ResolveInstrument finds an instrument by code, then by display name.
	ResolveInstrument(ctx context.Context, ident string) (model.Instrument, error)

	// DailyPrices returns one instrument's rows inside r, oldest first.
	DailyPrices(ctx context.Context, code string, r model.DateRange) ([]model.DailyPrice, error)

	Ping(ctx context.Context) error
	Close() error
}

// dateArg renders an optional bound as a YYYY-MM-DD query argument.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return model.FormatDate(*t)
}

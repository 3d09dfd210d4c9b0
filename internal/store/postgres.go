package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/pricesync/internal/model"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	db *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps an open pool. The schema must already exist
// (see database.Migrate).
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// LastCatalogUpdate implements Store.
func (s *Postgres) LastCatalogUpdate(ctx context.Context) (time.Time, bool, error) {
	var last *time.Time
	if err := s.db.QueryRow(ctx, `SELECT max(last_update) FROM company_info`).Scan(&last); err != nil {
		return time.Time{}, false, fmt.Errorf("query last catalog update: %w", err)
	}
	if last == nil {
		return time.Time{}, false, nil
	}
	return model.DateOf(*last), true, nil
}

// LoadInstruments implements Store.
func (s *Postgres) LoadInstruments(ctx context.Context) ([]model.Instrument, error) {
	rows, err := s.db.Query(ctx, `SELECT code, company, last_update FROM company_info ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}

	instruments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Instrument])
	if err != nil {
		return nil, fmt.Errorf("scan instruments: %w", err)
	}
	return instruments, nil
}

// UpsertInstruments implements Store.
func (s *Postgres) UpsertInstruments(ctx context.Context, instruments []model.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, in := range instruments {
		batch.Queue(`
			INSERT INTO company_info (code, company, last_update)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE
			SET company = EXCLUDED.company, last_update = EXCLUDED.last_update
		`, in.Code, in.Name, model.FormatDate(in.LastCatalogUpdate))
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return execBatch(ctx, tx, batch)
	})
	if err != nil {
		return fmt.Errorf("upsert instruments: %w", err)
	}
	return nil
}

// MergeDailyPrices implements Store.
func (s *Postgres) MergeDailyPrices(ctx context.Context, code string, rows []model.DailyPrice) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO daily_price (code, date, open, high, low, close, diff, volume)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (code, date) DO UPDATE
			SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			    close = EXCLUDED.close, diff = EXCLUDED.diff, volume = EXCLUDED.volume
		`, code, model.FormatDate(r.Date), r.Open, r.High, r.Low, r.Close, r.Diff, r.Volume)
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return execBatch(ctx, tx, batch)
	})
	if err != nil {
		return 0, fmt.Errorf("merge daily prices %s: %w", code, err)
	}
	return int64(len(rows)), nil
}

// execBatch sends a batch inside tx and checks every statement result.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}

// ResolveInstrument implements Store.
func (s *Postgres) ResolveInstrument(ctx context.Context, ident string) (model.Instrument, error) {
	var in model.Instrument

	err := s.db.QueryRow(ctx,
		`SELECT code, company, last_update FROM company_info WHERE code = $1`,
		model.NormalizeCode(ident),
	).Scan(&in.Code, &in.Name, &in.LastCatalogUpdate)
	if err == nil {
		return in, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Instrument{}, fmt.Errorf("resolve instrument %q: %w", ident, err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT code, company, last_update FROM company_info
		 WHERE company = $1 ORDER BY last_update DESC, code LIMIT 1`,
		ident,
	).Scan(&in.Code, &in.Name, &in.LastCatalogUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Instrument{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, ident)
	}
	if err != nil {
		return model.Instrument{}, fmt.Errorf("resolve instrument %q: %w", ident, err)
	}
	return in, nil
}

// DailyPrices implements Store.
func (s *Postgres) DailyPrices(ctx context.Context, code string, r model.DateRange) ([]model.DailyPrice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT code, date, open, high, low, close, diff, volume
		FROM daily_price
		WHERE code = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date
	`, code, dateArg(r.Start), dateArg(r.End))
	if err != nil {
		return nil, fmt.Errorf("query daily prices %s: %w", code, err)
	}

	prices, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.DailyPrice])
	if err != nil {
		return nil, fmt.Errorf("scan daily prices %s: %w", code, err)
	}
	return prices, nil
}

// Ping implements Store.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close implements Store.
func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}

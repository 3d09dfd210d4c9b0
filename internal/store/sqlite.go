package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rickgao/pricesync/internal/database"
	"github.com/rickgao/pricesync/internal/model"
)

// SQLite is the sqlx-backed Store. Dates are stored as YYYY-MM-DD text in
// DATE-declared columns, which the driver reads back as time.Time.
type SQLite struct {
	db *sqlx.DB
}

var _ Store = (*SQLite)(nil)

type instrumentRow struct {
	Code       string    `db:"code"`
	Company    string    `db:"company"`
	LastUpdate time.Time `db:"last_update"`
}

func (r instrumentRow) toModel() model.Instrument {
	return model.Instrument{Code: r.Code, Name: r.Company, LastCatalogUpdate: model.DateOf(r.LastUpdate)}
}

type priceRow struct {
	Code   string    `db:"code"`
	Date   time.Time `db:"date"`
	Open   int64     `db:"open"`
	High   int64     `db:"high"`
	Low    int64     `db:"low"`
	Close  int64     `db:"close"`
	Diff   int64     `db:"diff"`
	Volume int64     `db:"volume"`
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	for _, stmt := range database.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// LastCatalogUpdate implements Store.
func (s *SQLite) LastCatalogUpdate(ctx context.Context) (time.Time, bool, error) {
	var last sql.NullString
	if err := s.db.GetContext(ctx, &last, `SELECT max(last_update) FROM company_info`); err != nil {
		return time.Time{}, false, fmt.Errorf("query last catalog update: %w", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	d, err := model.ParseDate(last.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last catalog update: %w", err)
	}
	return d, true, nil
}

// LoadInstruments implements Store.
func (s *SQLite) LoadInstruments(ctx context.Context) ([]model.Instrument, error) {
	var rows []instrumentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT code, company, last_update FROM company_info ORDER BY code`); err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}

	out := make([]model.Instrument, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpsertInstruments implements Store.
func (s *SQLite) UpsertInstruments(ctx context.Context, instruments []model.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}

	err := s.inTx(ctx, `
		INSERT INTO company_info (code, company, last_update)
		VALUES (?, ?, ?)
		ON CONFLICT (code) DO UPDATE
		SET company = excluded.company, last_update = excluded.last_update
	`, func(stmt *sqlx.Stmt) error {
		for _, in := range instruments {
			if _, err := stmt.ExecContext(ctx, in.Code, in.Name, model.FormatDate(in.LastCatalogUpdate)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert instruments: %w", err)
	}
	return nil
}

// MergeDailyPrices implements Store.
func (s *SQLite) MergeDailyPrices(ctx context.Context, code string, rows []model.DailyPrice) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.inTx(ctx, `
		INSERT INTO daily_price (code, date, open, high, low, close, diff, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code, date) DO UPDATE
		SET open = excluded.open, high = excluded.high, low = excluded.low,
		    close = excluded.close, diff = excluded.diff, volume = excluded.volume
	`, func(stmt *sqlx.Stmt) error {
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				code, model.FormatDate(r.Date), r.Open, r.High, r.Low, r.Close, r.Diff, r.Volume,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("merge daily prices %s: %w", code, err)
	}
	return int64(len(rows)), nil
}

// inTx prepares query inside a transaction and commits when fn succeeds.
func (s *SQLite) inTx(ctx context.Context, query string, fn func(*sqlx.Stmt) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		return err
	}
	return tx.Commit()
}

// ResolveInstrument implements Store.
func (s *SQLite) ResolveInstrument(ctx context.Context, ident string) (model.Instrument, error) {
	var row instrumentRow

	err := s.db.GetContext(ctx, &row,
		`SELECT code, company, last_update FROM company_info WHERE code = ?`,
		model.NormalizeCode(ident))
	if err == nil {
		return row.toModel(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Instrument{}, fmt.Errorf("resolve instrument %q: %w", ident, err)
	}

	err = s.db.GetContext(ctx, &row,
		`SELECT code, company, last_update FROM company_info
		 WHERE company = ? ORDER BY last_update DESC, code LIMIT 1`,
		ident)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Instrument{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, ident)
	}
	if err != nil {
		return model.Instrument{}, fmt.Errorf("resolve instrument %q: %w", ident, err)
	}
	return row.toModel(), nil
}

// DailyPrices implements Store.
func (s *SQLite) DailyPrices(ctx context.Context, code string, r model.DateRange) ([]model.DailyPrice, error) {
	start, end := dateArg(r.Start), dateArg(r.End)

	var rows []priceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT code, date, open, high, low, close, diff, volume
		FROM daily_price
		WHERE code = ?
		  AND (? IS NULL OR date >= ?)
		  AND (? IS NULL OR date <= ?)
		ORDER BY date
	`, code, start, start, end, end)
	if err != nil {
		return nil, fmt.Errorf("query daily prices %s: %w", code, err)
	}

	out := make([]model.DailyPrice, len(rows))
	for i, r := range rows {
		out[i] = model.DailyPrice{
			Code:   r.Code,
			Date:   model.DateOf(r.Date),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Diff:   r.Diff,
			Volume: r.Volume,
		}
	}
	return out, nil
}

// Ping implements Store.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickgao/pricesync/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func priceOn(code string, d time.Time, close int64) model.DailyPrice {
	return model.DailyPrice{
		Code: code, Date: d,
		Open: close - 100, High: close + 200, Low: close - 300, Close: close,
		Diff: 100, Volume: 1000,
	}
}

// runStoreSuite exercises the Store contract against a fresh, empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("empty catalog", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.LastCatalogUpdate(context.Background())
		if err != nil {
			t.Fatalf("LastCatalogUpdate: %v", err)
		}
		if ok {
			t.Error("ok = true on empty store")
		}
	})

	t.Run("upsert instruments overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := []model.Instrument{
			{Code: "000001", Name: "Alpha", LastCatalogUpdate: day(2024, 1, 1)},
			{Code: "000002", Name: "Beta", LastCatalogUpdate: day(2024, 1, 1)},
		}
		if err := s.UpsertInstruments(ctx, first); err != nil {
			t.Fatalf("UpsertInstruments: %v", err)
		}
		renamed := []model.Instrument{{Code: "000001", Name: "Alpha Holdings", LastCatalogUpdate: day(2024, 1, 2)}}
		if err := s.UpsertInstruments(ctx, renamed); err != nil {
			t.Fatalf("UpsertInstruments: %v", err)
		}

		got, err := s.LoadInstruments(ctx)
		if err != nil {
			t.Fatalf("LoadInstruments: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Code != "000001" || got[0].Name != "Alpha Holdings" {
			t.Errorf("got[0] = %+v", got[0])
		}
		if !got[0].LastCatalogUpdate.Equal(day(2024, 1, 2)) {
			t.Errorf("got[0].LastCatalogUpdate = %v, want 2024-01-02", got[0].LastCatalogUpdate)
		}

		last, ok, err := s.LastCatalogUpdate(ctx)
		if err != nil || !ok {
			t.Fatalf("LastCatalogUpdate = %v, %v, %v", last, ok, err)
		}
		if !last.Equal(day(2024, 1, 2)) {
			t.Errorf("LastCatalogUpdate = %v, want 2024-01-02", last)
		}
	})

	t.Run("merge is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		page := []model.DailyPrice{
			priceOn("000001", day(2024, 1, 3), 1500),
			priceOn("000001", day(2024, 1, 2), 1400),
		}

		for i := 0; i < 2; i++ {
			n, err := s.MergeDailyPrices(ctx, "000001", page)
			if err != nil {
				t.Fatalf("MergeDailyPrices #%d: %v", i+1, err)
			}
			if n != 2 {
				t.Errorf("MergeDailyPrices #%d wrote %d, want 2", i+1, n)
			}
		}

		got, err := s.DailyPrices(ctx, "000001", model.DateRange{})
		if err != nil {
			t.Fatalf("DailyPrices: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2 (no duplicates)", len(got))
		}
		if got[0] != page[1] || got[1] != page[0] {
			t.Errorf("got %+v, want %+v oldest first", got, page)
		}
	})

	t.Run("merge overwrites in place", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.MergeDailyPrices(ctx, "000001", []model.DailyPrice{priceOn("000001", day(2024, 1, 2), 1400)}); err != nil {
			t.Fatal(err)
		}
		revised := priceOn("000001", day(2024, 1, 2), 1450)
		if _, err := s.MergeDailyPrices(ctx, "000001", []model.DailyPrice{revised}); err != nil {
			t.Fatal(err)
		}

		got, err := s.DailyPrices(ctx, "000001", model.DateRange{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0] != revised {
			t.Errorf("got %+v, want [%+v]", got, revised)
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var rows []model.DailyPrice
		for d := 1; d <= 10; d++ {
			rows = append(rows, priceOn("000001", day(2024, 1, d), int64(1000+d)))
		}
		rows = append(rows, priceOn("000002", day(2024, 1, 5), 99))
		if _, err := s.MergeDailyPrices(ctx, "000001", rows[:10]); err != nil {
			t.Fatal(err)
		}
		if _, err := s.MergeDailyPrices(ctx, "000002", rows[10:]); err != nil {
			t.Fatal(err)
		}

		start, end := day(2024, 1, 3), day(2024, 1, 6)
		tests := []struct {
			name string
			r    model.DateRange
			want int
		}{
			{"unbounded", model.DateRange{}, 10},
			{"start only", model.DateRange{Start: &start}, 8},
			{"end only", model.DateRange{End: &end}, 6},
			{"both", model.DateRange{Start: &start, End: &end}, 4},
		}
		for _, tt := range tests {
			got, err := s.DailyPrices(ctx, "000001", tt.r)
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			if len(got) != tt.want {
				t.Errorf("%s: len = %d, want %d", tt.name, len(got), tt.want)
			}
			for _, p := range got {
				if p.Code != "000001" {
					t.Errorf("%s: leaked row for %s", tt.name, p.Code)
				}
			}
		}
	})

	t.Run("resolve by code and name", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.UpsertInstruments(ctx, []model.Instrument{
			{Code: "005930", Name: "삼성전자", LastCatalogUpdate: day(2024, 1, 1)},
		}); err != nil {
			t.Fatal(err)
		}

		for _, ident := range []string{"005930", "5930", "삼성전자"} {
			got, err := s.ResolveInstrument(ctx, ident)
			if err != nil {
				t.Errorf("ResolveInstrument(%q): %v", ident, err)
				continue
			}
			if got.Code != "005930" {
				t.Errorf("ResolveInstrument(%q).Code = %q", ident, got.Code)
			}
		}

		_, err := s.ResolveInstrument(ctx, "nope")
		if !errors.Is(err, ErrUnknownInstrument) {
			t.Errorf("ResolveInstrument(nope) error = %v, want ErrUnknownInstrument", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}

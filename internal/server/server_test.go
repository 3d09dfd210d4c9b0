package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/scheduler"
	"github.com/rickgao/pricesync/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T) *store.SQLite {
	t.Helper()
	ctx := context.Background()

	st, err := store.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.UpsertInstruments(ctx, []model.Instrument{
		{Code: "005930", Name: "삼성전자", LastCatalogUpdate: day(10)},
	}); err != nil {
		t.Fatal(err)
	}

	var rows []model.DailyPrice
	for d := 2; d <= 5; d++ {
		rows = append(rows, model.DailyPrice{
			Code: "005930", Date: day(d),
			Open: 100, High: 110, Low: 90, Close: int64(100 + d), Diff: 1, Volume: 1000,
		})
	}
	if _, err := st.MergeDailyPrices(ctx, "005930", rows); err != nil {
		t.Fatal(err)
	}
	return st
}

type mockCatalog struct {
	instruments []model.Instrument
	last        time.Time
}

func (m mockCatalog) Instruments() []model.Instrument { return m.instruments }
func (m mockCatalog) LastRefresh() time.Time          { return m.last }

type mockStatus scheduler.Status

func (m mockStatus) Status() scheduler.Status { return scheduler.Status(m) }

// brokenStore fails every call.
type brokenStore struct{}

var errDown = errors.New("database is down")

func (brokenStore) ResolveInstrument(ctx context.Context, ident string) (model.Instrument, error) {
	return model.Instrument{}, errDown
}

func (brokenStore) DailyPrices(ctx context.Context, code string, r model.DateRange) ([]model.DailyPrice, error) {
	return nil, errDown
}

func (brokenStore) Ping(ctx context.Context) error { return errDown }

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetPrices(t *testing.T) {
	srv := New(seededStore(t), nil, nil, nil)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantDates []string
	}{
		{"by code", "/price?company=005930", 200, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
		{"by unpadded code", "/price?company=5930", 200, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
		{"by name", "/price?company=%EC%82%BC%EC%84%B1%EC%A0%84%EC%9E%90", 200, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
		{"start only", "/price?company=005930&start_date=2024-01-04", 200, []string{"2024-01-04", "2024-01-05"}},
		{"end only", "/price?company=005930&end_date=2024-01-02", 200, []string{"2024-01-02"}},
		{"both", "/price?company=005930&start_date=2024.01.03&end_date=20240104", 200, []string{"2024-01-03", "2024-01-04"}},
		{"empty bounds", "/price?company=005930&start_date=&end_date=", 200, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
		{"no rows in range", "/price?company=005930&start_date=2025-01-01", 200, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv.Handler(), tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantCode, rec.Body)
			}

			var body map[string]priceJSON
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(body) != len(tt.wantDates) {
				t.Fatalf("got %d dates, want %d: %v", len(body), len(tt.wantDates), body)
			}
			for _, d := range tt.wantDates {
				p, ok := body[d]
				if !ok {
					t.Errorf("missing %s", d)
					continue
				}
				if p.Code != "005930" || p.Open != 100 || p.Volume != 1000 {
					t.Errorf("%s = %+v", d, p)
				}
			}
		})
	}
}

func TestGetPrices_Errors(t *testing.T) {
	srv := New(seededStore(t), nil, nil, nil)

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{"missing company", "/price", http.StatusBadRequest},
		{"unknown company", "/price?company=999999", http.StatusNotFound},
		{"bad start", "/price?company=005930&start_date=yesterday", http.StatusBadRequest},
		{"bad end", "/price?company=005930&end_date=2024-13-01", http.StatusBadRequest},
		{"inverted range", "/price?company=005930&start_date=2024-01-05&end_date=2024-01-01", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv.Handler(), tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Errorf("body %v has no error message", body)
			}
		})
	}
}

func TestGetPrices_StoreFailure(t *testing.T) {
	srv := New(brokenStore{}, nil, nil, nil)

	rec := get(t, srv.Handler(), "/price?company=005930")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetInstruments(t *testing.T) {
	cat := mockCatalog{
		instruments: []model.Instrument{
			{Code: "000660", Name: "SK하이닉스", LastCatalogUpdate: day(10)},
			{Code: "005930", Name: "삼성전자", LastCatalogUpdate: day(10)},
		},
		last: time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC),
	}
	srv := New(seededStore(t), cat, nil, nil)

	rec := get(t, srv.Handler(), "/instruments")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Count       int              `json:"count"`
		Instruments []instrumentJSON `json:"instruments"`
		LastRefresh time.Time        `json:"last_refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || body.Instruments[0].Code != "000660" || body.Instruments[1].LastUpdate != "2024-01-10" {
		t.Errorf("body = %+v", body)
	}
	if !body.LastRefresh.Equal(cat.last) {
		t.Errorf("last_refresh = %v, want %v", body.LastRefresh, cat.last)
	}
}

func TestGetInstruments_NoCatalog(t *testing.T) {
	srv := New(seededStore(t), nil, nil, nil)
	if rec := get(t, srv.Handler(), "/instruments"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	cat := mockCatalog{instruments: []model.Instrument{{Code: "005930"}}}
	status := mockStatus{State: scheduler.StateScheduled, NextRun: time.Date(2024, 1, 11, 17, 0, 0, 0, time.UTC)}

	tests := []struct {
		name       string
		store      PriceReader
		catalog    Catalog
		wantCode   int
		wantStatus string
	}{
		{"healthy", seededStore(t), cat, http.StatusOK, "healthy"},
		{"empty catalog", seededStore(t), mockCatalog{}, http.StatusOK, "degraded"},
		{"store down", brokenStore{}, cat, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(tt.store, tt.catalog, status, nil)
			rec := get(t, srv.Handler(), "/health")
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}

			var body struct {
				Status     string `json:"status"`
				Components struct {
					Scheduler scheduler.Status `json:"scheduler"`
				} `json:"components"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Components.Scheduler.State != scheduler.StateScheduled {
				t.Errorf("scheduler state = %q", body.Components.Scheduler.State)
			}
		})
	}
}

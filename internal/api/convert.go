package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/model"
)

// ErrMissingField is returned when a required price field is absent.
var ErrMissingField = errors.New("missing field")

// ParseAmount parses an integer amount with optional grouping separators
// and sign: "78,500" -> 78500, "-1,200" -> -1200, "+300" -> 300.
// Fractional values are rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, ErrMissingField
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("fractional amount %q", s)
	}

	n := d.IntPart()
	if !decimal.NewFromInt(n).Equal(d) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return n, nil
}

// ToModel normalizes one upstream row. Any missing or unparseable field
// makes the whole row invalid.
func (p APIDailyPrice) ToModel(code string) (model.DailyPrice, error) {
	date, err := model.ParseDate(p.LocalTradedAt)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("date: %w", err)
	}

	out := model.DailyPrice{Code: code, Date: date}

	fields := []struct {
		name string
		raw  Amount
		dst  *int64
	}{
		{"open", p.OpenPrice, &out.Open},
		{"high", p.HighPrice, &out.High},
		{"low", p.LowPrice, &out.Low},
		{"close", p.ClosePrice, &out.Close},
		{"diff", p.CompareToPreviousClosePrice, &out.Diff},
		{"volume", p.AccumulatedTradingVolume, &out.Volume},
	}

	for _, f := range fields {
		v, err := ParseAmount(string(f.raw))
		if err != nil {
			return model.DailyPrice{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	// Some payloads carry an unsigned change plus a direction marker.
	if out.Diff > 0 && p.CompareToPreviousPrice.Falling() {
		out.Diff = -out.Diff
	}

	return out, nil
}

// NormalizePage converts a page of upstream rows, dropping invalid rows.
// It returns the surviving rows in upstream order and the drop count.
func NormalizePage(code string, rows []APIDailyPrice) ([]model.DailyPrice, int) {
	out := make([]model.DailyPrice, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		p, err := r.ToModel(code)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}

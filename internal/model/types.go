package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// CodeWidth is the fixed width of a numeric instrument code.
const CodeWidth = 6

// -----------------------------------------------------------------------------
// Relational Types
// -----------------------------------------------------------------------------

// Instrument is a listed company known to the catalog.
type Instrument struct {
	Code              string    // Primary key (e.g., "005930")
	Name              string    // Display name
	LastCatalogUpdate time.Time // Date of the last catalog refresh that listed it
}

// DailyPrice is one trading day of prices for one instrument.
type DailyPrice struct {
	Code   string    // Instrument code
	Date   time.Time // Trading day (00:00 UTC)
	Open   int64
	High   int64
	Low    int64
	Close  int64
	Diff   int64 // Change from the previous close
	Volume int64
}

// DateRange is an inclusive date range. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// Calendar helpers
// -----------------------------------------------------------------------------

// DateOf returns the calendar date of t (in t's location) as 00:00 UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"20060102",
}

// ParseDate parses the date representations seen upstream and in queries:
// YYYY-MM-DD, YYYY.MM.DD, YYYY/MM/DD, YYYYMMDD and RFC 3339 timestamps.
// The result is a calendar date at 00:00 UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	// Timestamps keep only their date part.
	if i := strings.IndexByte(s, 'T'); i == 10 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// NormalizeCode pads numeric codes to CodeWidth digits ("5930" -> "005930").
// Non-numeric codes are returned trimmed and upper-cased.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) >= CodeWidth {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", CodeWidth-len(code)) + code
}

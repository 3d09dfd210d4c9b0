package model

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-01-02", true},
		{"2024.01.02", true},
		{"2024.01.02.", true},
		{"2024/01/02", true},
		{"20240102", true},
		{"2024-01-02T15:30:00+09:00", true},
		{"  2024-01-02  ", true},
		{"", false},
		{"2024-13-02", false},
		{"yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if !tt.ok {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	// 00:30 in Seoul is still the previous day in UTC; the local date wins.
	in := time.Date(2024, 3, 1, 0, 30, 0, 0, kst)

	got := DateOf(in)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", got, want)
	}
	if FormatDate(got) != "2024-03-01" {
		t.Errorf("FormatDate() = %q, want %q", FormatDate(got), "2024-03-01")
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5930", "005930"},
		{"005930", "005930"},
		{"1", "000001"},
		{" 660 ", "000660"},
		{"0001a0", "0001A0"},
		{"Q5", "Q5"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.input); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDateRange_Contains(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	start, end := d(5), d(10)

	tests := []struct {
		name string
		r    DateRange
		day  int
		want bool
	}{
		{"unbounded", DateRange{}, 1, true},
		{"before start", DateRange{Start: &start}, 4, false},
		{"on start", DateRange{Start: &start}, 5, true},
		{"on end", DateRange{End: &end}, 10, true},
		{"after end", DateRange{End: &end}, 11, false},
		{"inside", DateRange{Start: &start, End: &end}, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(d(tt.day)); got != tt.want {
				t.Errorf("Contains(%d) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

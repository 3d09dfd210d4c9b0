package scheduler

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "ordinary day",
			now:  time.Date(2024, 3, 15, 10, 0, 0, 0, seoul),
			want: time.Date(2024, 3, 16, 17, 0, 0, 0, seoul),
		},
		{
			name: "after anchor",
			now:  time.Date(2024, 3, 15, 23, 59, 59, 0, seoul),
			want: time.Date(2024, 3, 16, 17, 0, 0, 0, seoul),
		},
		{
			name: "end of 31-day month",
			now:  time.Date(2024, 1, 31, 17, 0, 0, 0, seoul),
			want: time.Date(2024, 2, 1, 17, 0, 0, 0, seoul),
		},
		{
			name: "end of 30-day month",
			now:  time.Date(2024, 4, 30, 8, 0, 0, 0, seoul),
			want: time.Date(2024, 5, 1, 17, 0, 0, 0, seoul),
		},
		{
			name: "Feb 28 in leap year",
			now:  time.Date(2024, 2, 28, 17, 0, 0, 0, seoul),
			want: time.Date(2024, 2, 29, 17, 0, 0, 0, seoul),
		},
		{
			name: "Feb 29 in leap year",
			now:  time.Date(2024, 2, 29, 17, 0, 0, 0, seoul),
			want: time.Date(2024, 3, 1, 17, 0, 0, 0, seoul),
		},
		{
			name: "Feb 28 in common year",
			now:  time.Date(2023, 2, 28, 17, 0, 0, 0, seoul),
			want: time.Date(2023, 3, 1, 17, 0, 0, 0, seoul),
		},
		{
			name: "Dec 31",
			now:  time.Date(2023, 12, 31, 17, 30, 0, 0, seoul),
			want: time.Date(2024, 1, 1, 17, 0, 0, 0, seoul),
		},
		{
			name: "Nov 30",
			now:  time.Date(2023, 11, 30, 1, 0, 0, 0, seoul),
			want: time.Date(2023, 12, 1, 17, 0, 0, 0, seoul),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, DefaultAnchor)
			if !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if got.Location() != tt.now.Location() {
				t.Errorf("location = %v, want %v", got.Location(), tt.now.Location())
			}
		})
	}
}

func TestNextRun_CustomAnchor(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	got := NextRun(now, Anchor{Hour: 6, Minute: 45, Second: 30})
	want := time.Date(2024, 3, 16, 6, 45, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestAnchor_String(t *testing.T) {
	if got := DefaultAnchor.String(); got != "17:00:00" {
		t.Errorf("String() = %q, want 17:00:00", got)
	}
}

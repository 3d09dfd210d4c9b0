package scheduler

import (
	"fmt"
	"time"
)

// Anchor is a local time of day.
type Anchor struct {
	Hour   int
	Minute int
	Second int
}

// DefaultAnchor is 17:00:00, after the market close.
var DefaultAnchor = Anchor{Hour: 17}

func (a Anchor) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", a.Hour, a.Minute, a.Second)
}

// NextRun returns the anchor time on the calendar day after t, in t's
// location. Year and month boundaries roll over.
func NextRun(t time.Time, anchor Anchor) time.Time {
	year, month, day := t.Date()

	switch {
	case month == time.December && day == 31:
		year, month, day = year+1, time.January, 1
	case day == daysIn(year, month):
		month, day = month+1, 1
	default:
		day++
	}

	return time.Date(year, month, day, anchor.Hour, anchor.Minute, anchor.Second, 0, t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

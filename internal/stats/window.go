package stats

import (
	"strconv"
	"time"

	"github.com/grapebaby/grape/internal/civil"
)

// Range selector values. "all" is a large fixed bound, not an unbounded query.
const (
	AllDays          = 3650
	DefaultRangeDays = 30
)

var rangeDays = map[string]int{
	"7":   7,
	"30":  30,
	"90":  90,
	"all": AllDays,
}

// ParseRange maps a range selector to a day count. Empty and unknown
// selectors fall back to DefaultRangeDays.
func ParseRange(key string) int {
	if n, ok := rangeDays[key]; ok {
		return n
	}
	return DefaultRangeDays
}

// RangeKey is the inverse of ParseRange for the known selectors.
func RangeKey(days int) string {
	if days == AllDays {
		return "all"
	}
	return strconv.Itoa(days)
}

// Window is an inclusive span of civil dates.
type Window struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// TrendWindow returns the days-long window ending on today (inclusive).
// Counts below one are treated as one.
func TrendWindow(days int, today civil.Date) Window {
	if days < 1 {
		days = 1
	}
	return Window{Start: today.AddDays(-(days - 1)), End: today}
}

// Days returns the number of dates in w, zero when End precedes Start.
func (w Window) Days() int {
	n := civil.DaysBetween(w.Start, w.End) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Contains reports whether d lies within w.
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Bounds returns the UTC instants of the first and last millisecond of w.
func (w Window) Bounds(off civil.Offset) (from, to time.Time) {
	return off.DayStart(w.Start), off.DayEnd(w.End)
}

// RecentWindowStart returns the instant at which an N-day trailing window
// anchored at anchor begins: the start of anchor minus days.
func RecentWindowStart(days int, anchor civil.Date, off civil.Offset) time.Time {
	return off.DayStart(anchor.AddDays(-days))
}

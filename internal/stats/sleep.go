package stats

import (
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// Period classifies a sleep interval by when it started.
type Period string

// Sleep periods.
const (
	Daytime   Period = "daytime"
	Nighttime Period = "nighttime"
)

// Night runs from 19:00 (inclusive) to 07:00 (exclusive) local time.
const (
	nightStartHour = 19
	nightEndHour   = 7
)

// ClassifySleepPeriod returns Nighttime when start falls at or after 19:00 or
// before 07:00 at offset off, Daytime otherwise.
func ClassifySleepPeriod(start time.Time, off civil.Offset) Period {
	h := off.Hour(start)
	if h >= nightStartHour || h < nightEndHour {
		return Nighttime
	}
	return Daytime
}

// sleepDuration returns the length of a completed interval. ok is false for
// an open interval, which is not an error.
func sleepDuration(s models.Sleep) (d time.Duration, ok bool, err error) {
	if s.EndTime == nil {
		return 0, false, nil
	}
	if s.EndTime.Before(s.StartTime) {
		return 0, false, &ValidationError{Kind: "sleep", ID: s.ID, Reason: "end time is before start time"}
	}
	return s.EndTime.Sub(s.StartTime), true, nil
}

// DailyTotalMinutes sums the whole minutes of every completed interval.
// Open intervals contribute nothing.
func DailyTotalMinutes(sleeps []models.Sleep) (int, error) {
	total := 0
	for _, s := range sleeps {
		d, ok, err := sleepDuration(s)
		if err != nil {
			return 0, err
		}
		if ok {
			total += int(d / time.Minute)
		}
	}
	return total, nil
}

// sleepTenths sums the completed intervals the way the calendar does: each
// one is rounded to a tenth of an hour before it is added.
func sleepTenths(sleeps []models.Sleep) (int64, error) {
	var total int64
	for _, s := range sleeps {
		d, ok, err := sleepDuration(s)
		if err != nil {
			return 0, err
		}
		if ok {
			total += hourTenths(d)
		}
	}
	return total, nil
}

// hourTenths converts d to tenths of an hour, rounding half up.
func hourTenths(d time.Duration) int64 {
	const tenth = 6 * time.Minute
	return int64((d + tenth/2) / tenth)
}

// roundHours converts d to hours rounded half up to one decimal.
func roundHours(d time.Duration) float64 {
	return float64(hourTenths(d)) / 10
}

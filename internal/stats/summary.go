// Package stats aggregates stored records into per-day summaries and dense
// per-day trend series, bucketing every instant by its civil date at a fixed
// offset. It performs no I/O.
package stats

import (
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// DaySummary aggregates one civil day for the calendar view.
type DaySummary struct {
	Date            civil.Date `json:"date"`
	FeedingCount    int        `json:"feedingCount"`
	FeedingTotalMl  float64    `json:"feedingTotalMl"`
	SleepTotalHours float64    `json:"sleepTotalHours"`
	DiaperCount     int        `json:"diaperCount"`

	sleepTenths int64
}

// SummarizeMonth groups records by the civil day they fall on and returns
// one summary per day that has at least one record. Sleep intervals are keyed
// by their start; each completed interval is rounded to a tenth of an hour
// before it is added, and open intervals add nothing but still mark the day.
// Records outside month are ignored.
func SummarizeMonth(month civil.Month, off civil.Offset, feedings []models.Feeding, sleeps []models.Sleep, diapers []models.Diaper) (map[civil.Date]DaySummary, error) {
	return summarize(month.Contains, off, feedings, sleeps, diapers)
}

// SummarizeDay returns the summary of a single day. Unlike SummarizeMonth the
// result is always present, zero-valued when nothing matched.
func SummarizeDay(day civil.Date, off civil.Offset, feedings []models.Feeding, sleeps []models.Sleep, diapers []models.Diaper) (DaySummary, error) {
	m, err := summarize(func(d civil.Date) bool { return d == day }, off, feedings, sleeps, diapers)
	if err != nil {
		return DaySummary{}, err
	}
	if s, ok := m[day]; ok {
		return s, nil
	}
	return DaySummary{Date: day}, nil
}

func summarize(include func(civil.Date) bool, off civil.Offset, feedings []models.Feeding, sleeps []models.Sleep, diapers []models.Diaper) (map[civil.Date]DaySummary, error) {
	days := make(map[civil.Date]*DaySummary)
	day := func(d civil.Date) *DaySummary {
		s, ok := days[d]
		if !ok {
			s = &DaySummary{Date: d}
			days[d] = s
		}
		return s
	}

	for _, f := range feedings {
		d := off.DateOf(f.Time)
		if !include(d) {
			continue
		}
		s := day(d)
		s.FeedingCount++
		if f.Amount != nil {
			s.FeedingTotalMl += *f.Amount
		}
	}

	for _, sl := range sleeps {
		d := off.DateOf(sl.StartTime)
		if !include(d) {
			continue
		}
		dur, ok, err := sleepDuration(sl)
		if err != nil {
			return nil, err
		}
		s := day(d)
		if ok {
			s.sleepTenths += hourTenths(dur)
		}
	}

	for _, dp := range diapers {
		d := off.DateOf(dp.Time)
		if !include(d) {
			continue
		}
		day(d).DiaperCount++
	}

	out := make(map[civil.Date]DaySummary, len(days))
	for d, s := range days {
		s.SleepTotalHours = float64(s.sleepTenths) / 10
		out[d] = *s
	}
	return out, nil
}

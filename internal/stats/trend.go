package stats

import (
	"fmt"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// Bucket is one day of a dense trend series.
type Bucket[V any] struct {
	Date    civil.Date `json:"date"`
	Label   string     `json:"day"`
	Weekday string     `json:"weekday"`
	Values  V          `json:"values"`
}

// KeyFunc returns the instant a record is bucketed by. Returning false
// leaves the record out of the series.
type KeyFunc[R any] func(rec R) (time.Time, bool)

// FoldFunc accumulates rec into the bucket values v.
type FoldFunc[R, V any] func(v *V, rec R) error

var weekdayLabels = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// DayLabel formats d as "M/D" for chart axes.
func DayLabel(d civil.Date) string {
	return fmt.Sprintf("%d/%d", int(d.Month), d.Day)
}

// WeekdayLabel returns the short Chinese weekday name of d.
func WeekdayLabel(d civil.Date) string {
	return weekdayLabels[d.Weekday()]
}

// BuildTrend emits one bucket per date of w in ascending order. Every date is
// present even when no record falls on it. Each record is placed on the civil
// date of its key instant at offset off and folded into that bucket; records
// outside w are skipped.
func BuildTrend[R, V any](records []R, w Window, off civil.Offset, key KeyFunc[R], fold FoldFunc[R, V]) ([]Bucket[V], error) {
	if w.End.Before(w.Start) {
		return nil, &ValidationError{Kind: "range", Reason: fmt.Sprintf("end %s is before start %s", w.End, w.Start)}
	}

	n := w.Days()
	buckets := make([]Bucket[V], n)
	for i, d := 0, w.Start; i < n; i, d = i+1, d.AddDays(1) {
		buckets[i] = Bucket[V]{Date: d, Label: DayLabel(d), Weekday: WeekdayLabel(d)}
	}

	for _, rec := range records {
		t, ok := key(rec)
		if !ok {
			continue
		}
		d := off.DateOf(t)
		if !w.Contains(d) {
			continue
		}
		if err := fold(&buckets[civil.DaysBetween(w.Start, d)].Values, rec); err != nil {
			return nil, err
		}
	}
	return buckets, nil
}

// FeedingPoint is the per-day feeding volume and count.
type FeedingPoint struct {
	TotalMl float64 `json:"totalMl"`
	Count   int     `json:"count"`
}

// FeedingTrend builds the daily feeding series over w.
func FeedingTrend(feedings []models.Feeding, w Window, off civil.Offset) ([]Bucket[FeedingPoint], error) {
	return BuildTrend(feedings, w, off,
		func(f models.Feeding) (time.Time, bool) { return f.Time, true },
		func(v *FeedingPoint, f models.Feeding) error {
			v.Count++
			if f.Amount != nil {
				v.TotalMl += *f.Amount
			}
			return nil
		})
}

// SleepPoint splits a day's completed sleep into daytime and nighttime hours.
type SleepPoint struct {
	Daytime   float64 `json:"daytime"`
	Nighttime float64 `json:"nighttime"`

	day, night time.Duration
}

// SleepTrend builds the daily sleep series over w. Intervals are keyed by
// their start and classified with ClassifySleepPeriod. Open intervals are
// left out of both halves.
func SleepTrend(sleeps []models.Sleep, w Window, off civil.Offset) ([]Bucket[SleepPoint], error) {
	buckets, err := BuildTrend(sleeps, w, off,
		func(s models.Sleep) (time.Time, bool) { return s.StartTime, s.Completed() },
		func(v *SleepPoint, s models.Sleep) error {
			d, _, err := sleepDuration(s)
			if err != nil {
				return err
			}
			if ClassifySleepPeriod(s.StartTime, off) == Nighttime {
				v.night += d
			} else {
				v.day += d
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	for i := range buckets {
		v := &buckets[i].Values
		v.Daytime = roundHours(v.day)
		v.Nighttime = roundHours(v.night)
	}
	return buckets, nil
}

// DiaperPoint counts a day's diaper changes by type.
type DiaperPoint struct {
	Wet   int `json:"wet"`
	Dirty int `json:"dirty"`
	Both  int `json:"both"`
}

// DiaperTrend builds the daily diaper series over w. Unknown types are not
// counted.
func DiaperTrend(diapers []models.Diaper, w Window, off civil.Offset) ([]Bucket[DiaperPoint], error) {
	return BuildTrend(diapers, w, off,
		func(d models.Diaper) (time.Time, bool) { return d.Time, true },
		func(v *DiaperPoint, d models.Diaper) error {
			switch d.Type {
			case models.DiaperWet:
				v.Wet++
			case models.DiaperDirty:
				v.Dirty++
			case models.DiaperBoth:
				v.Both++
			}
			return nil
		})
}

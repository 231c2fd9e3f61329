package stats

import (
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// Overview is the "today" block of the dashboard. Callers pass the records
// already scoped to Date.
type Overview struct {
	Date              civil.Date `json:"date"`
	FeedingCount      int        `json:"feedingCount"`
	FeedingTotalMl    float64    `json:"feedingTotalMl"`
	LastFeedingTime   *time.Time `json:"lastFeedingTime,omitempty"`
	SleepTotalMinutes int        `json:"sleepTotalMinutes"`
	SleepTotalHours   float64    `json:"sleepTotalHours"`
	DiaperCount       int        `json:"diaperCount"`
}

// DayOverview totals one day's feedings, completed sleep and diapers.
func DayOverview(date civil.Date, feedings []models.Feeding, sleeps []models.Sleep, diapers []models.Diaper) (Overview, error) {
	minutes, err := DailyTotalMinutes(sleeps)
	if err != nil {
		return Overview{}, err
	}
	tenths, err := sleepTenths(sleeps)
	if err != nil {
		return Overview{}, err
	}
	ov := Overview{
		Date:              date,
		FeedingCount:      len(feedings),
		SleepTotalMinutes: minutes,
		SleepTotalHours:   float64(tenths) / 10,
		DiaperCount:       len(diapers),
	}
	for _, f := range feedings {
		if f.Amount != nil {
			ov.FeedingTotalMl += *f.Amount
		}
		if ov.LastFeedingTime == nil || f.Time.After(*ov.LastFeedingTime) {
			t := f.Time
			ov.LastFeedingTime = &t
		}
	}
	return ov, nil
}

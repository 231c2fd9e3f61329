package trackservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/metrics"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/stats"
)

// DashboardTrendDays is the length of the dashboard trend series.
const DashboardTrendDays = 7

// EnsureSubject upserts the configured subject row. A stored photo survives.
func (s *Service) EnsureSubject(ctx context.Context) error {
	return s.store.UpsertBaby(ctx, models.Baby{
		ID:        s.subject.ID,
		Name:      s.subject.Name,
		BirthDate: s.subject.BirthDate,
		Gender:    s.subject.Gender,
		CreatedAt: s.now().UTC(),
	})
}

// Profile is the subject row plus its age today.
type Profile struct {
	models.Baby
	AgeDays   int `json:"ageDays"`
	AgeMonths int `json:"ageMonths"`
}

// Baby returns the subject profile.
func (s *Service) Baby(ctx context.Context) (Profile, error) {
	b, err := s.store.GetBaby(ctx, s.subject.ID)
	if err != nil {
		return Profile{}, err
	}
	today := s.Today()
	return Profile{
		Baby:      *b,
		AgeDays:   max(0, civil.DaysBetween(b.BirthDate, today)),
		AgeMonths: max(0, civil.MonthsBetween(b.BirthDate, today)),
	}, nil
}

// dayRecords is the three collections the calendar aggregations read.
type dayRecords struct {
	feedings []models.Feeding
	sleeps   []models.Sleep
	diapers  []models.Diaper
}

// fetch loads the feedings, sleeps and diapers of [from, to] concurrently.
func (s *Service) fetch(ctx context.Context, from, to time.Time) (dayRecords, error) {
	var out dayRecords
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.feedings, err = s.store.FeedingsBetween(gctx, s.subject.ID, from, to)
		return err
	})
	g.Go(func() (err error) {
		out.sleeps, err = s.store.SleepsBetween(gctx, s.subject.ID, from, to)
		return err
	})
	g.Go(func() (err error) {
		out.diapers, err = s.store.DiapersBetween(gctx, s.subject.ID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return dayRecords{}, err
	}
	return out, nil
}

// Dashboard is the landing view.
type Dashboard struct {
	Today        stats.Overview                     `json:"today"`
	ActiveSleep  *models.Sleep                      `json:"activeSleep"`
	FeedingTrend []stats.Bucket[stats.FeedingPoint] `json:"feedingTrend"`
	SleepTrend   []stats.Bucket[stats.SleepPoint]   `json:"sleepTrend"`
	Baby         *Profile                           `json:"baby,omitempty"`
}

// Dashboard builds today's overview, the active sleep and the 7-day trends.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	defer metrics.ObserveAggregation("dashboard", time.Now())

	today := s.Today()
	w := stats.TrendWindow(DashboardTrendDays, today)
	from, to := w.Bounds(s.off)
	recs, err := s.fetch(ctx, from, to)
	if err != nil {
		return Dashboard{}, err
	}

	var day dayRecords
	for _, f := range recs.feedings {
		if s.off.DateOf(f.Time) == today {
			day.feedings = append(day.feedings, f)
		}
	}
	for _, sl := range recs.sleeps {
		if s.off.DateOf(sl.StartTime) == today {
			day.sleeps = append(day.sleeps, sl)
		}
	}
	for _, d := range recs.diapers {
		if s.off.DateOf(d.Time) == today {
			day.diapers = append(day.diapers, d)
		}
	}

	var out Dashboard
	if out.Today, err = stats.DayOverview(today, day.feedings, day.sleeps, day.diapers); err != nil {
		return Dashboard{}, err
	}
	if out.FeedingTrend, err = stats.FeedingTrend(recs.feedings, w, s.off); err != nil {
		return Dashboard{}, err
	}
	if out.SleepTrend, err = stats.SleepTrend(recs.sleeps, w, s.off); err != nil {
		return Dashboard{}, err
	}
	if out.ActiveSleep, err = s.ActiveSleep(ctx); err != nil {
		return Dashboard{}, err
	}
	switch p, err := s.Baby(ctx); {
	case err == nil:
		out.Baby = &p
	case !errors.Is(err, apperr.ErrNotFound):
		return Dashboard{}, err
	}
	return out, nil
}

// MonthView is the calendar month: a sparse map of days with records, plus
// the neighbouring months for navigation.
type MonthView struct {
	Month civil.Month                     `json:"month"`
	Prev  civil.Month                     `json:"prev"`
	Next  civil.Month                     `json:"next"`
	Days  map[civil.Date]stats.DaySummary `json:"days"`
}

// MonthSummary aggregates every civil day of month that has records.
func (s *Service) MonthSummary(ctx context.Context, month civil.Month) (MonthView, error) {
	defer metrics.ObserveAggregation("month_summary", time.Now())

	from, to := s.off.MonthRange(month)
	recs, err := s.fetch(ctx, from, to)
	if err != nil {
		return MonthView{}, err
	}
	days, err := stats.SummarizeMonth(month, s.off, recs.feedings, recs.sleeps, recs.diapers)
	if err != nil {
		return MonthView{}, err
	}
	return MonthView{Month: month, Prev: month.Prev(), Next: month.Next(), Days: days}, nil
}

// DayDetail is one civil day: its records, newest first, and their summary.
type DayDetail struct {
	Date     civil.Date       `json:"date"`
	Summary  stats.DaySummary `json:"summary"`
	Feedings []models.Feeding `json:"feedings"`
	Sleeps   []models.Sleep   `json:"sleeps"`
	Diapers  []models.Diaper  `json:"diapers"`
}

// DayDetail loads and summarises one civil day.
func (s *Service) DayDetail(ctx context.Context, day civil.Date) (DayDetail, error) {
	defer metrics.ObserveAggregation("day_detail", time.Now())

	recs, err := s.fetch(ctx, s.off.DayStart(day), s.off.DayEnd(day))
	if err != nil {
		return DayDetail{}, err
	}
	sum, err := stats.SummarizeDay(day, s.off, recs.feedings, recs.sleeps, recs.diapers)
	if err != nil {
		return DayDetail{}, err
	}
	return DayDetail{
		Date:     day,
		Summary:  sum,
		Feedings: newestFirst(recs.feedings),
		Sleeps:   newestFirst(recs.sleeps),
		Diapers:  newestFirst(recs.diapers),
	}, nil
}

// Trends is the dense chart data for a trailing window.
type Trends struct {
	Range   string                             `json:"range"`
	Window  stats.Window                       `json:"window"`
	Feeding []stats.Bucket[stats.FeedingPoint] `json:"feeding"`
	Sleep   []stats.Bucket[stats.SleepPoint]   `json:"sleep"`
	Diaper  []stats.Bucket[stats.DiaperPoint]  `json:"diaper"`
}

// Trends builds the three series for a range selector (7, 30, 90 or all).
// Unknown selectors fall back to 30 days.
func (s *Service) Trends(ctx context.Context, rangeKey string) (Trends, error) {
	defer metrics.ObserveAggregation("trends", time.Now())

	days := stats.ParseRange(rangeKey)
	w := stats.TrendWindow(days, s.Today())
	from, to := w.Bounds(s.off)
	recs, err := s.fetch(ctx, from, to)
	if err != nil {
		return Trends{}, err
	}

	out := Trends{Range: stats.RangeKey(days), Window: w}
	if out.Feeding, err = stats.FeedingTrend(recs.feedings, w, s.off); err != nil {
		return Trends{}, fmt.Errorf("feeding trend: %w", err)
	}
	if out.Sleep, err = stats.SleepTrend(recs.sleeps, w, s.off); err != nil {
		return Trends{}, fmt.Errorf("sleep trend: %w", err)
	}
	if out.Diaper, err = stats.DiaperTrend(recs.diapers, w, s.off); err != nil {
		return Trends{}, fmt.Errorf("diaper trend: %w", err)
	}
	return out, nil
}

// newestFirst returns a reversed copy of an ascending slice, never nil.
func newestFirst[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

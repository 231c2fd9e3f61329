package trackservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/stats"
)

// Record kinds, as reported to metrics and change events.
const (
	KindFeeding     = "feeding"
	KindSleep       = "sleep"
	KindDiaper      = "diaper"
	KindGrowth      = "growth"
	KindVaccination = "vaccination"
	KindDoctorVisit = "doctor_visit"
	KindTemperature = "temperature"
	KindMilestone   = "milestone"
)

// LogFeeding validates and stores a feeding.
func (s *Service) LogFeeding(ctx context.Context, in FeedingInput) (models.Feeding, error) {
	if err := in.Validate(); err != nil {
		return models.Feeding{}, invalid(err)
	}
	at, err := s.instant("time", in.Time)
	if err != nil {
		return models.Feeding{}, err
	}
	f := models.Feeding{
		ID:        s.newID(),
		BabyID:    s.subject.ID,
		Time:      at,
		Type:      in.Type,
		Amount:    in.Amount,
		Duration:  in.Duration,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertFeeding(ctx, f); err != nil {
		return models.Feeding{}, err
	}
	s.changed(ChangeCreated, KindFeeding, f.ID, s.dateKey(f.Time))
	return f, nil
}

// DeleteFeeding removes a feeding.
func (s *Service) DeleteFeeding(ctx context.Context, id string) error {
	if err := s.store.DeleteFeeding(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindFeeding, id, "")
	return nil
}

// FeedingsOn returns the feedings of one civil day, newest first.
func (s *Service) FeedingsOn(ctx context.Context, day civil.Date) ([]models.Feeding, error) {
	out, err := s.store.FeedingsBetween(ctx, s.subject.ID, s.off.DayStart(day), s.off.DayEnd(day))
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return nonNil(out), nil
}

// RecentFeedings returns the latest feedings, newest first. limit defaults to 10.
func (s *Service) RecentFeedings(ctx context.Context, limit int) ([]models.Feeding, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	out, err := s.store.RecentFeedings(ctx, s.subject.ID, limit)
	return nonNil(out), err
}

// LogSleep stores a sleep interval, open when EndTime is empty. Starting a
// new interval while another is open is allowed.
func (s *Service) LogSleep(ctx context.Context, in SleepInput) (models.Sleep, error) {
	if err := in.Validate(); err != nil {
		return models.Sleep{}, invalid(err)
	}
	start, err := s.instant("startTime", in.StartTime)
	if err != nil {
		return models.Sleep{}, err
	}
	end, err := s.optionalInstant("endTime", in.EndTime)
	if err != nil {
		return models.Sleep{}, err
	}
	sl := models.Sleep{
		ID:        s.newID(),
		BabyID:    s.subject.ID,
		StartTime: start,
		EndTime:   end,
		Quality:   in.Quality,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
	}
	if end != nil && end.Before(start) {
		return models.Sleep{}, &stats.ValidationError{Kind: KindSleep, ID: sl.ID, Reason: "end time is before start time"}
	}
	if err := s.store.InsertSleep(ctx, sl); err != nil {
		return models.Sleep{}, err
	}
	s.changed(ChangeCreated, KindSleep, sl.ID, s.dateKey(sl.StartTime))
	return sl, nil
}

// EndSleep closes the open interval id. An empty EndTime means now. It fails
// with apperr.ErrConflict when the interval has already ended.
func (s *Service) EndSleep(ctx context.Context, id string, in EndSleepInput) (models.Sleep, error) {
	if err := in.Validate(); err != nil {
		return models.Sleep{}, invalid(err)
	}
	sl, err := s.store.GetSleep(ctx, s.subject.ID, id)
	if err != nil {
		return models.Sleep{}, err
	}
	if sl.Completed() {
		return models.Sleep{}, fmt.Errorf("sleep %s already ended: %w", id, apperr.ErrConflict)
	}
	end, err := s.instant("endTime", in.EndTime)
	if err != nil {
		return models.Sleep{}, err
	}
	if end.Before(sl.StartTime) {
		return models.Sleep{}, &stats.ValidationError{Kind: KindSleep, ID: id, Reason: "end time is before start time"}
	}
	if err := s.store.EndSleep(ctx, s.subject.ID, id, end, in.Quality); err != nil {
		return models.Sleep{}, err
	}
	sl.EndTime = &end
	if in.Quality != "" {
		sl.Quality = in.Quality
	}
	s.changed(ChangeUpdated, KindSleep, id, s.dateKey(sl.StartTime))
	return sl, nil
}

// ActiveSleep returns the newest open interval, or nil when the subject is awake.
func (s *Service) ActiveSleep(ctx context.Context) (*models.Sleep, error) {
	sl, err := s.store.ActiveSleep(ctx, s.subject.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

// DeleteSleep removes a sleep interval.
func (s *Service) DeleteSleep(ctx context.Context, id string) error {
	if err := s.store.DeleteSleep(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindSleep, id, "")
	return nil
}

// SleepsOn returns the intervals starting on one civil day, newest first.
func (s *Service) SleepsOn(ctx context.Context, day civil.Date) ([]models.Sleep, error) {
	out, err := s.store.SleepsBetween(ctx, s.subject.ID, s.off.DayStart(day), s.off.DayEnd(day))
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return nonNil(out), nil
}

// LogDiaper validates and stores a diaper change.
func (s *Service) LogDiaper(ctx context.Context, in DiaperInput) (models.Diaper, error) {
	if err := in.Validate(); err != nil {
		return models.Diaper{}, invalid(err)
	}
	at, err := s.instant("time", in.Time)
	if err != nil {
		return models.Diaper{}, err
	}
	d := models.Diaper{
		ID:        s.newID(),
		BabyID:    s.subject.ID,
		Time:      at,
		Type:      in.Type,
		Color:     in.Color,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertDiaper(ctx, d); err != nil {
		return models.Diaper{}, err
	}
	s.changed(ChangeCreated, KindDiaper, d.ID, s.dateKey(d.Time))
	return d, nil
}

// DeleteDiaper removes a diaper change.
func (s *Service) DeleteDiaper(ctx context.Context, id string) error {
	if err := s.store.DeleteDiaper(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindDiaper, id, "")
	return nil
}

// DiapersOn returns the changes of one civil day, newest first.
func (s *Service) DiapersOn(ctx context.Context, day civil.Date) ([]models.Diaper, error) {
	out, err := s.store.DiapersBetween(ctx, s.subject.ID, s.off.DayStart(day), s.off.DayEnd(day))
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return nonNil(out), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

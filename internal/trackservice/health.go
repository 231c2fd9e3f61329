package trackservice

import (
	"context"
	"fmt"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/health"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/stats"
	"github.com/grapebaby/grape/internal/vaccine"
)

// AddGrowth stores a measurement. An empty date means today.
func (s *Service) AddGrowth(ctx context.Context, in GrowthInput) (models.Growth, error) {
	if err := in.Validate(); err != nil {
		return models.Growth{}, invalid(err)
	}
	at, err := s.dayInstant("date", in.Date)
	if err != nil {
		return models.Growth{}, err
	}
	g := models.Growth{
		ID:        s.newID(),
		BabyID:    s.subject.ID,
		Date:      at,
		Weight:    in.Weight,
		Height:    in.Height,
		HeadCirc:  in.HeadCirc,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertGrowth(ctx, g); err != nil {
		return models.Growth{}, err
	}
	s.changed(ChangeCreated, KindGrowth, g.ID, s.dateKey(g.Date))
	return g, nil
}

// DeleteGrowth removes a measurement.
func (s *Service) DeleteGrowth(ctx context.Context, id string) error {
	if err := s.store.DeleteGrowth(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindGrowth, id, "")
	return nil
}

// GrowthHistory returns every measurement, oldest first, with the subject's
// age at the time.
func (s *Service) GrowthHistory(ctx context.Context) ([]health.GrowthPoint, error) {
	rows, err := s.store.ListGrowth(ctx, s.subject.ID)
	if err != nil {
		return nil, err
	}
	return health.WithAge(rows, s.subject.BirthDate, s.off), nil
}

// AddVaccination records a dose.
func (s *Service) AddVaccination(ctx context.Context, in VaccinationInput) (models.Vaccination, error) {
	if err := in.Validate(); err != nil {
		return models.Vaccination{}, invalid(err)
	}
	v := models.Vaccination{
		ID:          s.newID(),
		BabyID:      s.subject.ID,
		Name:        in.Name,
		DoseNumber:  in.DoseNumber,
		Hospital:    in.Hospital,
		BatchNumber: in.BatchNumber,
		Note:        in.Note,
		CreatedAt:   s.now().UTC(),
	}
	switch dose, scheduled := vaccine.Lookup(in.Name, in.DoseNumber); {
	case in.ScheduledDate != "":
		at, err := s.off.ToInstant(in.ScheduledDate)
		if err != nil {
			return models.Vaccination{}, fmt.Errorf("scheduledDate: %w", err)
		}
		v.ScheduledDate = at
	case scheduled:
		v.ScheduledDate = dose.ScheduledInstant(s.subject.BirthDate, s.off)
	default:
		return models.Vaccination{}, fmt.Errorf("%w: scheduledDate is required for %s dose %d", apperr.ErrInvalid, in.Name, in.DoseNumber)
	}
	actual, err := s.optionalInstant("actualDate", in.ActualDate)
	if err != nil {
		return models.Vaccination{}, err
	}
	v.ActualDate = actual

	if err := s.store.InsertVaccination(ctx, v); err != nil {
		return models.Vaccination{}, err
	}
	s.changed(ChangeCreated, KindVaccination, v.ID, s.dateKey(v.ScheduledDate))
	return v, nil
}

// UpdateVaccination applies the fields present in in to dose id.
func (s *Service) UpdateVaccination(ctx context.Context, id string, in VaccinationUpdate) (models.Vaccination, error) {
	if err := in.Validate(); err != nil {
		return models.Vaccination{}, invalid(err)
	}
	v, err := s.store.GetVaccination(ctx, s.subject.ID, id)
	if err != nil {
		return models.Vaccination{}, err
	}
	if in.ActualDate != nil {
		if v.ActualDate, err = s.optionalInstant("actualDate", *in.ActualDate); err != nil {
			return models.Vaccination{}, err
		}
	}
	if in.Hospital != nil {
		v.Hospital = *in.Hospital
	}
	if in.BatchNumber != nil {
		v.BatchNumber = *in.BatchNumber
	}
	if in.Note != nil {
		v.Note = *in.Note
	}
	if err := s.store.UpdateVaccination(ctx, v); err != nil {
		return models.Vaccination{}, err
	}
	s.changed(ChangeUpdated, KindVaccination, v.ID, s.dateKey(v.ScheduledDate))
	return v, nil
}

// Vaccinations returns every recorded dose.
func (s *Service) Vaccinations(ctx context.Context) ([]models.Vaccination, error) {
	out, err := s.store.ListVaccinations(ctx, s.subject.ID)
	return nonNil(out), err
}

// ScheduleView is the national schedule merged with recorded doses.
type ScheduleView struct {
	AgeMonths int                    `json:"ageMonths"`
	Counts    map[vaccine.Status]int `json:"counts"`
	Entries   []vaccine.Entry        `json:"entries"`
}

// VaccinationSchedule merges the national schedule with recorded doses as of today.
func (s *Service) VaccinationSchedule(ctx context.Context) (ScheduleView, error) {
	recs, err := s.store.ListVaccinations(ctx, s.subject.ID)
	if err != nil {
		return ScheduleView{}, err
	}
	today := s.Today()
	entries := vaccine.Merge(s.subject.BirthDate, today, recs)
	return ScheduleView{
		AgeMonths: max(0, civil.MonthsBetween(s.subject.BirthDate, today)),
		Counts:    vaccine.Counts(entries),
		Entries:   entries,
	}, nil
}

// AddDoctorVisit stores a visit. An empty date means today.
func (s *Service) AddDoctorVisit(ctx context.Context, in DoctorVisitInput) (models.DoctorVisit, error) {
	if err := in.Validate(); err != nil {
		return models.DoctorVisit{}, invalid(err)
	}
	at, err := s.dayInstant("date", in.Date)
	if err != nil {
		return models.DoctorVisit{}, err
	}
	v := models.DoctorVisit{
		ID:           s.newID(),
		BabyID:       s.subject.ID,
		Date:         at,
		Hospital:     in.Hospital,
		Doctor:       in.Doctor,
		Reason:       in.Reason,
		Diagnosis:    in.Diagnosis,
		Prescription: in.Prescription,
		Note:         in.Note,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertDoctorVisit(ctx, v); err != nil {
		return models.DoctorVisit{}, err
	}
	s.changed(ChangeCreated, KindDoctorVisit, v.ID, s.dateKey(v.Date))
	return v, nil
}

// DeleteDoctorVisit removes a visit.
func (s *Service) DeleteDoctorVisit(ctx context.Context, id string) error {
	if err := s.store.DeleteDoctorVisit(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindDoctorVisit, id, "")
	return nil
}

// DoctorVisits returns every visit, newest first.
func (s *Service) DoctorVisits(ctx context.Context) ([]models.DoctorVisit, error) {
	out, err := s.store.ListDoctorVisits(ctx, s.subject.ID)
	return nonNil(out), err
}

// AddTemperature stores a reading and returns it with its band.
func (s *Service) AddTemperature(ctx context.Context, in TemperatureInput) (health.ClassifiedTemperature, error) {
	if err := in.Validate(); err != nil {
		return health.ClassifiedTemperature{}, invalid(err)
	}
	at, err := s.instant("time", in.Time)
	if err != nil {
		return health.ClassifiedTemperature{}, err
	}
	t := models.Temperature{
		ID:        s.newID(),
		BabyID:    s.subject.ID,
		Time:      at,
		Value:     in.Value,
		Method:    in.Method,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertTemperature(ctx, t); err != nil {
		return health.ClassifiedTemperature{}, err
	}
	s.changed(ChangeCreated, KindTemperature, t.ID, s.dateKey(t.Time))
	return health.ClassifyAll([]models.Temperature{t})[0], nil
}

// DeleteTemperature removes a reading.
func (s *Service) DeleteTemperature(ctx context.Context, id string) error {
	if err := s.store.DeleteTemperature(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindTemperature, id, "")
	return nil
}

// DefaultTemperatureDays is the window Temperatures uses when days <= 0.
const DefaultTemperatureDays = 7

// Temperatures returns the readings of the trailing window of days, newest
// first, each with its band.
func (s *Service) Temperatures(ctx context.Context, days int) ([]health.ClassifiedTemperature, error) {
	if days <= 0 {
		days = DefaultTemperatureDays
	}
	from := stats.RecentWindowStart(days, s.Today(), s.off)
	rows, err := s.store.TemperaturesSince(ctx, s.subject.ID, from)
	if err != nil {
		return nil, err
	}
	return health.ClassifyAll(rows), nil
}

// AddMilestone stores a milestone. An empty date means today.
func (s *Service) AddMilestone(ctx context.Context, in MilestoneInput) (models.Milestone, error) {
	if err := in.Validate(); err != nil {
		return models.Milestone{}, invalid(err)
	}
	at, err := s.dayInstant("date", in.Date)
	if err != nil {
		return models.Milestone{}, err
	}
	m := models.Milestone{
		ID:          s.newID(),
		BabyID:      s.subject.ID,
		Date:        at,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertMilestone(ctx, m); err != nil {
		return models.Milestone{}, err
	}
	s.changed(ChangeCreated, KindMilestone, m.ID, s.dateKey(m.Date))
	return m, nil
}

// DeleteMilestone removes a milestone.
func (s *Service) DeleteMilestone(ctx context.Context, id string) error {
	if err := s.store.DeleteMilestone(ctx, s.subject.ID, id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, KindMilestone, id, "")
	return nil
}

// Milestones returns the milestones in category, newest first. An empty
// category returns all of them.
func (s *Service) Milestones(ctx context.Context, category string) ([]models.Milestone, error) {
	if category != "" {
		if _, ok := models.MilestoneLabels[category]; !ok {
			return nil, invalid(fmt.Errorf("unknown milestone category %q", category))
		}
	}
	out, err := s.store.ListMilestones(ctx, s.subject.ID, category)
	return nonNil(out), err
}

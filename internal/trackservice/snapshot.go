package trackservice

import (
	"context"
	"fmt"

	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/stats"
)

// Export returns the full snapshot of the subject's records.
func (s *Service) Export(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Export(ctx, s.subject.ID, s.now().UTC())
}

// ExportFilename is the attachment name for an export taken today.
func (s *Service) ExportFilename() string {
	return fmt.Sprintf("grape-export-%s.json", s.Today())
}

// Import writes snap under the configured subject. Records with the same id
// are replaced. A snapshot holding a sleep that ends before it starts is
// rejected whole. It returns the number of records written, excluding the
// subject row.
func (s *Service) Import(ctx context.Context, snap *models.Snapshot) (int, error) {
	if snap == nil {
		return 0, invalid(fmt.Errorf("empty snapshot"))
	}
	for _, sl := range snap.SleepRecords {
		if sl.EndTime != nil && sl.EndTime.Before(sl.StartTime) {
			return 0, &stats.ValidationError{Kind: KindSleep, ID: sl.ID, Reason: "end time is before start time"}
		}
	}
	s.normalize(snap)
	n, err := s.store.Import(ctx, snap)
	if err != nil {
		return 0, err
	}
	s.changed(ChangeCreated, "import", "", "")
	return n, nil
}

// normalize rewrites every baby id to the configured subject. Missing subject
// fields are filled from config.
func (s *Service) normalize(snap *models.Snapshot) {
	if snap.Baby == nil {
		snap.Baby = &models.Baby{}
	}
	b := snap.Baby
	b.ID = s.subject.ID
	if b.Name == "" {
		b.Name = s.subject.Name
	}
	if b.BirthDate.IsZero() {
		b.BirthDate = s.subject.BirthDate
	}
	if b.Gender == "" {
		b.Gender = s.subject.Gender
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}
	id := s.subject.ID
	for i := range snap.Feedings {
		snap.Feedings[i].BabyID = id
	}
	for i := range snap.SleepRecords {
		snap.SleepRecords[i].BabyID = id
	}
	for i := range snap.DiaperRecords {
		snap.DiaperRecords[i].BabyID = id
	}
	for i := range snap.GrowthRecords {
		snap.GrowthRecords[i].BabyID = id
	}
	for i := range snap.Vaccinations {
		snap.Vaccinations[i].BabyID = id
	}
	for i := range snap.DoctorVisits {
		snap.DoctorVisits[i].BabyID = id
	}
	for i := range snap.Temperatures {
		snap.Temperatures[i].BabyID = id
	}
	for i := range snap.Milestones {
		snap.Milestones[i].BabyID = id
	}
}

package store

import (
	"context"
	"time"

	"github.com/grapebaby/grape/internal/models"
)

// Store is the persistence surface the service layer depends on. Range
// predicates are inclusive on both ends and compare UTC instants.
type Store interface {
	UpsertBaby(ctx context.Context, b models.Baby) error
	GetBaby(ctx context.Context, id string) (*models.Baby, error)

	InsertFeeding(ctx context.Context, f models.Feeding) error
	DeleteFeeding(ctx context.Context, babyID, id string) error
	FeedingsBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Feeding, error)
	RecentFeedings(ctx context.Context, babyID string, limit int) ([]models.Feeding, error)

	InsertSleep(ctx context.Context, s models.Sleep) error
	DeleteSleep(ctx context.Context, babyID, id string) error
	GetSleep(ctx context.Context, babyID, id string) (models.Sleep, error)
	SleepsBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Sleep, error)
	ActiveSleep(ctx context.Context, babyID string) (models.Sleep, error)
	EndSleep(ctx context.Context, babyID, id string, end time.Time, quality string) error

	InsertDiaper(ctx context.Context, d models.Diaper) error
	DeleteDiaper(ctx context.Context, babyID, id string) error
	DiapersBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Diaper, error)

	InsertGrowth(ctx context.Context, g models.Growth) error
	DeleteGrowth(ctx context.Context, babyID, id string) error
	ListGrowth(ctx context.Context, babyID string) ([]models.Growth, error)

	InsertVaccination(ctx context.Context, v models.Vaccination) error
	UpdateVaccination(ctx context.Context, v models.Vaccination) error
	GetVaccination(ctx context.Context, babyID, id string) (models.Vaccination, error)
	ListVaccinations(ctx context.Context, babyID string) ([]models.Vaccination, error)

	InsertDoctorVisit(ctx context.Context, v models.DoctorVisit) error
	DeleteDoctorVisit(ctx context.Context, babyID, id string) error
	ListDoctorVisits(ctx context.Context, babyID string) ([]models.DoctorVisit, error)

	InsertTemperature(ctx context.Context, t models.Temperature) error
	DeleteTemperature(ctx context.Context, babyID, id string) error
	TemperaturesSince(ctx context.Context, babyID string, from time.Time) ([]models.Temperature, error)

	InsertMilestone(ctx context.Context, m models.Milestone) error
	DeleteMilestone(ctx context.Context, babyID, id string) error
	ListMilestones(ctx context.Context, babyID, category string) ([]models.Milestone, error)

	Export(ctx context.Context, babyID string, exportedAt time.Time) (*models.Snapshot, error)
	Import(ctx context.Context, snap *models.Snapshot) (int, error)
	ImportChecksums(ctx context.Context) (map[string]string, error)
	RecordImport(ctx context.Context, meta models.FileMetadata, records int, at time.Time) error

	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

package api

import (
	"github.com/grapebaby/grape/internal/health"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/trackservice"
)

// Request bodies are the service input forms.
type (
	FeedingRequest     = trackservice.FeedingInput
	SleepRequest       = trackservice.SleepInput
	EndSleepRequest    = trackservice.EndSleepInput
	DiaperRequest      = trackservice.DiaperInput
	GrowthRequest      = trackservice.GrowthInput
	VaccinationRequest = trackservice.VaccinationInput
	VaccinationPatch   = trackservice.VaccinationUpdate
	DoctorVisitRequest = trackservice.DoctorVisitInput
	TemperatureRequest = trackservice.TemperatureInput
	MilestoneRequest   = trackservice.MilestoneInput
)

// FeedingListResponse wraps feedings, newest first.
type FeedingListResponse struct {
	Date     string           `json:"date,omitempty" example:"2026-03-15"`
	Feedings []models.Feeding `json:"feedings" validate:"required"`
}

// SleepListResponse wraps sleep intervals, newest first.
type SleepListResponse struct {
	Date   string         `json:"date" example:"2026-03-15" validate:"required"`
	Sleeps []models.Sleep `json:"sleeps" validate:"required"`
}

// ActiveSleepResponse carries the open interval, null when awake.
type ActiveSleepResponse struct {
	Sleep *models.Sleep `json:"sleep"`
}

// DiaperListResponse wraps diaper changes, newest first.
type DiaperListResponse struct {
	Date    string          `json:"date" example:"2026-03-15" validate:"required"`
	Diapers []models.Diaper `json:"diapers" validate:"required"`
}

// GrowthListResponse wraps measurements, oldest first.
type GrowthListResponse struct {
	Records []health.GrowthPoint `json:"records" validate:"required"`
}

// VaccinationListResponse wraps recorded doses.
type VaccinationListResponse struct {
	Vaccinations []models.Vaccination `json:"vaccinations" validate:"required"`
}

// DoctorVisitListResponse wraps visits, newest first.
type DoctorVisitListResponse struct {
	Visits []models.DoctorVisit `json:"visits" validate:"required"`
}

// TemperatureListResponse wraps classified readings, newest first.
type TemperatureListResponse struct {
	Days         int                            `json:"days" example:"7" validate:"required"`
	Temperatures []health.ClassifiedTemperature `json:"temperatures" validate:"required"`
}

// MilestoneListResponse wraps milestones, newest first.
type MilestoneListResponse struct {
	Milestones []models.Milestone `json:"milestones" validate:"required"`
}

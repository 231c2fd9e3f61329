package trackservice

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/grapebaby/grape/internal/models"
)

// Time and date fields take the naive local forms accepted by
// civil.Offset.ToInstant ("2026-03-15", "2026-03-15T07:30"). An empty time
// means now.

// FeedingInput is the form for a new feeding.
type FeedingInput struct {
	Time     string   `json:"time"`
	Type     string   `json:"type"`
	Amount   *float64 `json:"amount,omitempty"`
	Duration *int     `json:"duration,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// Validate checks the feeding form.
func (in FeedingInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, validation.In(models.Keys(models.FeedingLabels)...)),
		validation.Field(&in.Amount, validation.Min(0.0), validation.Max(1000.0)),
		validation.Field(&in.Duration, validation.Min(0), validation.Max(600)),
		validation.Field(&in.Note, validation.Length(0, 500)),
	)
}

// SleepInput is the form for a sleep interval. EndTime is empty while the
// subject is still asleep.
type SleepInput struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Quality   string `json:"quality,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Validate checks the sleep form.
func (in SleepInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Quality, validation.In(models.Keys(models.SleepQualityLabels)...)),
		validation.Field(&in.Note, validation.Length(0, 500)),
	)
}

// EndSleepInput closes an open interval.
type EndSleepInput struct {
	EndTime string `json:"endTime"`
	Quality string `json:"quality,omitempty"`
}

// Validate checks the end-sleep form.
func (in EndSleepInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Quality, validation.In(models.Keys(models.SleepQualityLabels)...)),
	)
}

// DiaperInput is the form for a diaper change.
type DiaperInput struct {
	Time  string `json:"time"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Validate checks the diaper form.
func (in DiaperInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, validation.In(models.Keys(models.DiaperLabels)...)),
		validation.Field(&in.Color, validation.Length(0, 50)),
		validation.Field(&in.Note, validation.Length(0, 500)),
	)
}

// GrowthInput is the form for a measurement. At least one value is required.
type GrowthInput struct {
	Date     string   `json:"date"`
	Weight   *float64 `json:"weight,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	HeadCirc *float64 `json:"headCirc,omitempty"`
	Note     string   `json:"note,omitempty"`
}

var errNoMeasurement = errors.New("at least one of weight, height or headCirc is required")

// Validate checks the growth form.
func (in GrowthInput) Validate() error {
	if in.Weight == nil && in.Height == nil && in.HeadCirc == nil {
		return errNoMeasurement
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Weight, validation.Min(0.5), validation.Max(50.0)),
		validation.Field(&in.Height, validation.Min(20.0), validation.Max(150.0)),
		validation.Field(&in.HeadCirc, validation.Min(20.0), validation.Max(70.0)),
		validation.Field(&in.Note, validation.Length(0, 500)),
	)
}

// VaccinationInput records a dose. ScheduledDate defaults to the national
// schedule's date for Name and DoseNumber.
type VaccinationInput struct {
	Name          string `json:"name"`
	DoseNumber    int    `json:"doseNumber"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ActualDate    string `json:"actualDate,omitempty"`
	Hospital      string `json:"hospital,omitempty"`
	BatchNumber   string `json:"batchNumber,omitempty"`
	Note          string `json:"note,omitempty"`
}

// Validate checks the vaccination form.
func (in VaccinationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.DoseNumber, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&in.Hospital, validation.Length(0, 200)),
		validation.Field(&in.BatchNumber, validation.Length(0, 100)),
	)
}

// VaccinationUpdate changes the administration fields of a dose. Nil fields
// are left as they are; an empty ActualDate clears the date.
type VaccinationUpdate struct {
	ActualDate  *string `json:"actualDate,omitempty"`
	Hospital    *string `json:"hospital,omitempty"`
	BatchNumber *string `json:"batchNumber,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// Validate checks the update form.
func (in VaccinationUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Hospital, validation.Length(0, 200)),
		validation.Field(&in.BatchNumber, validation.Length(0, 100)),
	)
}

// DoctorVisitInput is the form for a clinic visit.
type DoctorVisitInput struct {
	Date         string `json:"date"`
	Hospital     string `json:"hospital"`
	Doctor       string `json:"doctor,omitempty"`
	Reason       string `json:"reason"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Validate checks the visit form.
func (in DoctorVisitInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Hospital, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Reason, validation.Required, validation.Length(1, 500)),
	)
}

// TemperatureInput is the form for a reading in °C.
type TemperatureInput struct {
	Time   string  `json:"time"`
	Value  float64 `json:"value"`
	Method string  `json:"method,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Validate checks the temperature form.
func (in TemperatureInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Value, validation.Required, validation.Min(30.0), validation.Max(45.0)),
		validation.Field(&in.Method, validation.In(models.Keys(models.TempMethodLabels)...)),
	)
}

// MilestoneInput is the form for a milestone.
type MilestoneInput struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// Validate checks the milestone form.
func (in MilestoneInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Category, validation.Required, validation.In(models.Keys(models.MilestoneLabels)...)),
	)
}

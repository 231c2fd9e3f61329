// Package models defines the stored record types for the tracked subject.
package models

import (
	"time"

	"github.com/grapebaby/grape/internal/civil"
)

// Baby is the single tracked subject.
type Baby struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BirthDate civil.Date `json:"birthDate"`
	Gender    string     `json:"gender"`
	Photo     string     `json:"photo,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Feeding is one bottle or solid-food feeding. Amount is in ml, Duration in minutes.
type Feeding struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"babyId"`
	Time      time.Time `json:"time"`
	Type      string    `json:"type"`
	Amount    *float64  `json:"amount,omitempty"`
	Duration  *int      `json:"duration,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sleep is a sleep interval. EndTime is nil while the subject is still asleep.
type Sleep struct {
	ID        string     `json:"id"`
	BabyID    string     `json:"babyId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Quality   string     `json:"quality,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Completed reports whether the interval has both ends.
func (s Sleep) Completed() bool {
	return s.EndTime != nil
}

// Diaper is one diaper change.
type Diaper struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"babyId"`
	Time      time.Time `json:"time"`
	Type      string    `json:"type"`
	Color     string    `json:"color,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Growth is a body measurement: weight in kg, height and head circumference in cm.
type Growth struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"babyId"`
	Date      time.Time `json:"date"`
	Weight    *float64  `json:"weight,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	HeadCirc  *float64  `json:"headCirc,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vaccination is one vaccine dose, scheduled and optionally administered.
type Vaccination struct {
	ID            string     `json:"id"`
	BabyID        string     `json:"babyId"`
	Name          string     `json:"name"`
	DoseNumber    int        `json:"doseNumber"`
	ScheduledDate time.Time  `json:"scheduledDate"`
	ActualDate    *time.Time `json:"actualDate,omitempty"`
	Hospital      string     `json:"hospital,omitempty"`
	BatchNumber   string     `json:"batchNumber,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// DoctorVisit is a clinic or hospital visit.
type DoctorVisit struct {
	ID           string    `json:"id"`
	BabyID       string    `json:"babyId"`
	Date         time.Time `json:"date"`
	Hospital     string    `json:"hospital"`
	Doctor       string    `json:"doctor,omitempty"`
	Reason       string    `json:"reason"`
	Diagnosis    string    `json:"diagnosis,omitempty"`
	Prescription string    `json:"prescription,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Temperature is a body temperature reading in °C.
type Temperature struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"babyId"`
	Time      time.Time `json:"time"`
	Value     float64   `json:"value"`
	Method    string    `json:"method,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Milestone is a developmental milestone.
type Milestone struct {
	ID          string    `json:"id"`
	BabyID      string    `json:"babyId"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Photo       string    `json:"photo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Package health holds the reference rules for temperature readings and
// growth measurements.
package health

import (
	"math"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// Band is a temperature classification.
type Band string

// Temperature bands, in °C.
const (
	BandLow       Band = "low"
	BandNormal    Band = "normal"
	BandLowFever  Band = "low_fever"
	BandHighFever Band = "high_fever"
)

// Band thresholds. Normal is [NormalLow, NormalHigh]; low fever runs up to
// and including LowFeverHigh.
const (
	NormalLow    = 36.0
	NormalHigh   = 37.5
	LowFeverHigh = 38.5
)

// BandLabels are the display names of each band.
var BandLabels = map[Band]string{
	BandLow:       "偏低",
	BandNormal:    "正常",
	BandLowFever:  "低烧",
	BandHighFever: "高烧",
}

// Classify returns the band of a reading in °C.
func Classify(celsius float64) Band {
	switch {
	case celsius < NormalLow:
		return BandLow
	case celsius <= NormalHigh:
		return BandNormal
	case celsius <= LowFeverHigh:
		return BandLowFever
	default:
		return BandHighFever
	}
}

// Label is BandLabels[b].
func (b Band) Label() string { return BandLabels[b] }

// ClassifiedTemperature is a reading together with its band.
type ClassifiedTemperature struct {
	models.Temperature
	Band      Band   `json:"band"`
	BandLabel string `json:"bandLabel"`
}

// ClassifyAll annotates each reading with its band.
func ClassifyAll(temps []models.Temperature) []ClassifiedTemperature {
	out := make([]ClassifiedTemperature, len(temps))
	for i, t := range temps {
		b := Classify(t.Value)
		out[i] = ClassifiedTemperature{Temperature: t, Band: b, BandLabel: b.Label()}
	}
	return out
}

// daysPerMonth is the mean Gregorian month length used for growth charts.
const daysPerMonth = 30.44

// AgeInMonths returns the age at instant at, in fractional months rounded to
// one decimal, never negative. The birth date is read as midnight at off.
func AgeInMonths(birth civil.Date, at time.Time, off civil.Offset) float64 {
	days := at.Sub(off.DayStart(birth)).Hours() / 24
	months := math.Round(days/daysPerMonth*10) / 10
	return math.Max(0, months)
}

// GrowthPoint is a measurement with the subject's age at that time.
type GrowthPoint struct {
	models.Growth
	AgeMonths float64 `json:"ageMonths"`
}

// WithAge annotates measurements with AgeInMonths.
func WithAge(records []models.Growth, birth civil.Date, off civil.Offset) []GrowthPoint {
	out := make([]GrowthPoint, len(records))
	for i, g := range records {
		out[i] = GrowthPoint{Growth: g, AgeMonths: AgeInMonths(birth, g.Date, off)}
	}
	return out
}

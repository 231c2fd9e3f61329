package models

// Feeding types.
const (
	FeedingFormula    = "formula"
	FeedingRiceCereal = "rice_cereal"
)

// Diaper types.
const (
	DiaperWet   = "wet"
	DiaperDirty = "dirty"
	DiaperBoth  = "both"
)

// Sleep quality values.
const (
	SleepGood   = "good"
	SleepNormal = "normal"
	SleepPoor   = "poor"
)

// Milestone categories.
const (
	MilestoneMotor     = "motor"
	MilestoneLanguage  = "language"
	MilestoneSocial    = "social"
	MilestoneCognitive = "cognitive"
)

// Temperature measurement methods.
const (
	TempEar      = "ear"
	TempForehead = "forehead"
	TempArmpit   = "armpit"
	TempRectal   = "rectal"
)

// Display labels, keyed by stored value.
var (
	FeedingLabels = map[string]string{
		FeedingFormula:    "奶粉",
		FeedingRiceCereal: "米粉",
	}
	DiaperLabels = map[string]string{
		DiaperWet:   "小便",
		DiaperDirty: "大便",
		DiaperBoth:  "大小便",
	}
	SleepQualityLabels = map[string]string{
		SleepGood:   "好",
		SleepNormal: "一般",
		SleepPoor:   "差",
	}
	MilestoneLabels = map[string]string{
		MilestoneMotor:     "运动发育",
		MilestoneLanguage:  "语言发育",
		MilestoneSocial:    "社交情感",
		MilestoneCognitive: "认知发育",
	}
	TempMethodLabels = map[string]string{
		TempEar:      "耳温",
		TempForehead: "额温",
		TempArmpit:   "腋温",
		TempRectal:   "肛温",
	}
)

// Keys returns the stored values of a label table as []any, the form
// validation.In expects.
func Keys(labels map[string]string) []any {
	out := make([]any, 0, len(labels))
	for k := range labels {
		out = append(out, k)
	}
	return out
}

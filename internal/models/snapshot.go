package models

import "time"

// Snapshot is the full export document. The same shape is accepted by the
// import inbox (JSON, or YAML with the same keys).
type Snapshot struct {
	ExportDate    time.Time     `json:"exportDate"`
	Baby          *Baby         `json:"baby"`
	Feedings      []Feeding     `json:"feedings"`
	SleepRecords  []Sleep       `json:"sleepRecords"`
	DiaperRecords []Diaper      `json:"diaperRecords"`
	GrowthRecords []Growth      `json:"growthRecords"`
	Vaccinations  []Vaccination `json:"vaccinations"`
	DoctorVisits  []DoctorVisit `json:"doctorVisits"`
	Temperatures  []Temperature `json:"temperatures"`
	Milestones    []Milestone   `json:"milestones"`
}

// Count returns the number of records in s, excluding the subject row.
func (s *Snapshot) Count() int {
	return len(s.Feedings) + len(s.SleepRecords) + len(s.DiaperRecords) +
		len(s.GrowthRecords) + len(s.Vaccinations) + len(s.DoctorVisits) +
		len(s.Temperatures) + len(s.Milestones)
}

// FileMetadata describes a document in the data directory.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

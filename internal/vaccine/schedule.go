// Package vaccine carries the national immunisation schedule and merges it
// with the doses recorded for the subject.
package vaccine

import (
	"sort"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// Dose is one entry of the schedule.
type Dose struct {
	Name      string `json:"name"`
	Dose      int    `json:"dose"`
	AgeMonths int    `json:"ageMonths"`
	AgeLabel  string `json:"ageLabel"`
}

// Schedule is the 2024 national immunisation programme.
var Schedule = []Dose{
	{"乙肝疫苗", 1, 0, "出生时"},
	{"卡介苗", 1, 0, "出生时"},
	{"乙肝疫苗", 2, 1, "1月龄"},
	{"脊灰灭活疫苗", 1, 2, "2月龄"},
	{"脊灰灭活疫苗", 2, 3, "3月龄"},
	{"百白破疫苗", 1, 3, "3月龄"},
	{"脊灰减毒活疫苗", 3, 4, "4月龄"},
	{"百白破疫苗", 2, 4, "4月龄"},
	{"百白破疫苗", 3, 5, "5月龄"},
	{"乙肝疫苗", 3, 6, "6月龄"},
	{"A群流脑多糖疫苗", 1, 6, "6月龄"},
	{"麻腮风疫苗", 1, 8, "8月龄"},
	{"乙脑减毒活疫苗", 1, 8, "8月龄"},
	{"A群流脑多糖疫苗", 2, 9, "9月龄"},
	{"麻腮风疫苗", 2, 18, "18月龄"},
	{"甲肝减毒活疫苗", 1, 18, "18月龄"},
	{"百白破疫苗", 4, 18, "18月龄"},
	{"脊灰减毒活疫苗", 4, 48, "4岁"},
	{"A群C群流脑多糖疫苗", 1, 36, "3岁"},
	{"A群C群流脑多糖疫苗", 2, 72, "6岁"},
	{"乙脑减毒活疫苗", 2, 24, "2岁"},
	{"白破疫苗", 1, 72, "6岁"},
}

// Status of a scheduled dose.
type Status string

// Dose statuses.
const (
	StatusDue       Status = "due"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
)

var statusOrder = map[Status]int{
	StatusDue:       0,
	StatusUpcoming:  1,
	StatusCompleted: 2,
}

// Entry is a schedule dose joined with its stored record, if any.
type Entry struct {
	Dose
	ScheduledDate civil.Date          `json:"scheduledDate"`
	Status        Status              `json:"status"`
	Record        *models.Vaccination `json:"record,omitempty"`
}

// ScheduledDate returns birth plus the dose's age in calendar months.
func (d Dose) ScheduledDate(birth civil.Date) civil.Date {
	return birth.AddMonths(d.AgeMonths)
}

// ScheduledInstant is ScheduledDate as the start of that day at off.
func (d Dose) ScheduledInstant(birth civil.Date, off civil.Offset) time.Time {
	return off.DayStart(d.ScheduledDate(birth))
}

// Lookup finds the schedule entry for name and dose number.
func Lookup(name string, dose int) (Dose, bool) {
	for _, d := range Schedule {
		if d.Name == name && d.Dose == dose {
			return d, true
		}
	}
	return Dose{}, false
}

// Merge joins Schedule with the stored doses. A dose is completed once its
// record has an actual date, due once the subject's age in whole months has
// reached it, and upcoming otherwise. The result is ordered due, upcoming,
// completed and then by age.
func Merge(birth, today civil.Date, records []models.Vaccination) []Entry {
	age := civil.MonthsBetween(birth, today)

	byKey := make(map[doseKey]*models.Vaccination, len(records))
	for i := range records {
		k := doseKey{records[i].Name, records[i].DoseNumber}
		if _, dup := byKey[k]; !dup {
			byKey[k] = &records[i]
		}
	}

	entries := make([]Entry, 0, len(Schedule))
	for _, d := range Schedule {
		e := Entry{Dose: d, ScheduledDate: d.ScheduledDate(birth), Status: StatusUpcoming}
		if rec, ok := byKey[doseKey{d.Name, d.Dose}]; ok {
			e.Record = rec
		}
		switch {
		case e.Record != nil && e.Record.ActualDate != nil:
			e.Status = StatusCompleted
		case d.AgeMonths <= age:
			e.Status = StatusDue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Status != b.Status {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}
		return a.AgeMonths < b.AgeMonths
	})
	return entries
}

// Counts tallies entries per status.
func Counts(entries []Entry) map[Status]int {
	out := map[Status]int{StatusDue: 0, StatusUpcoming: 0, StatusCompleted: 0}
	for _, e := range entries {
		out[e.Status]++
	}
	return out
}

type doseKey struct {
	name string
	dose int
}

package civil

import (
	"fmt"
	"time"
)

// Month is a (year, month) pair owning days 1..Days().
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth validates month against 1..12.
func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, &RangeError{Field: "month", Value: month}
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// ParseMonth parses the canonical YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 || s[4] != '-' {
		return Month{}, &ParseError{Input: s, Expected: "YYYY-MM"}
	}
	y, ok1 := atoiFixed(s[0:4])
	m, ok2 := atoiFixed(s[5:7])
	if !ok1 || !ok2 {
		return Month{}, &ParseError{Input: s, Expected: "YYYY-MM"}
	}
	if m < 1 || m > 12 {
		return Month{}, &RangeError{Input: s, Field: "month", Value: m}
	}
	return Month{Year: y, Month: time.Month(m)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText encodes m as YYYY-MM.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes YYYY-MM.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Days returns the month length, accounting for leap years.
func (m Month) Days() int {
	return daysIn(m.Year, m.Month)
}

// First returns day 1 of m.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the final day of m.
func (m Month) Last() Date {
	return Date{Year: m.Year, Month: m.Month, Day: m.Days()}
}

// Next returns the following month, rolling December into January.
func (m Month) Next() Month {
	return m.First().AddMonths(1).YearMonth()
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return m.First().AddMonths(-1).YearMonth()
}

// Contains reports whether d falls within m.
func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

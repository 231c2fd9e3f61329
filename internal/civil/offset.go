// Package civil converts between UTC instants and calendar days/months as
// they are experienced at one fixed UTC offset.
//
// The offset never changes (no daylight saving). Every conversion is built
// from the offset itself and never from the host's local zone, so results are
// identical on any machine.
package civil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Offset is a fixed distance east of UTC.
type Offset time.Duration

// ChinaStandardTime is UTC+08:00, the default target offset.
const ChinaStandardTime = Offset(8 * time.Hour)

// ParseOffset parses "Z" or a "+HH:MM" / "-HH:MM" designator.
func ParseOffset(s string) (Offset, error) {
	if s == "Z" {
		return 0, nil
	}
	if len(s) != 6 || s[3] != ':' || (s[0] != '+' && s[0] != '-') {
		return 0, &ParseError{Input: s, Expected: "+HH:MM"}
	}
	h, ok1 := atoiFixed(s[1:3])
	m, ok2 := atoiFixed(s[4:6])
	if !ok1 || !ok2 {
		return 0, &ParseError{Input: s, Expected: "+HH:MM"}
	}
	if h > 14 || (h == 14 && m != 0) {
		return 0, &RangeError{Input: s, Field: "hour", Value: h}
	}
	if m > 59 {
		return 0, &RangeError{Input: s, Field: "minute", Value: m}
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if s[0] == '-' {
		d = -d
	}
	return Offset(d), nil
}

func (o Offset) String() string {
	d := time.Duration(o)
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	return fmt.Sprintf("%c%02d:%02d", sign, int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// Location returns a fixed zone for o.
func (o Offset) Location() *time.Location {
	return time.FixedZone("UTC"+o.String(), int(time.Duration(o)/time.Second))
}

// DateOf returns the calendar day t falls on at offset o.
func (o Offset) DateOf(t time.Time) Date {
	return dateOf(t.In(o.Location()))
}

// Today is DateOf(now).
func (o Offset) Today(now time.Time) Date {
	return o.DateOf(now)
}

// Hour returns the wall-clock hour (0-23) of t at offset o.
func (o Offset) Hour(t time.Time) int {
	return t.In(o.Location()).Hour()
}

// DayStart returns the UTC instant of 00:00:00.000 on d.
func (o Offset) DayStart(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, o.Location()).UTC()
}

// DayEnd returns the UTC instant of 23:59:59.999 on d.
func (o Offset) DayEnd(d Date) time.Time {
	return o.DayStart(d.AddDays(1)).Add(-time.Millisecond)
}

// MonthRange returns the first and last millisecond of m.
func (o Offset) MonthRange(m Month) (start, end time.Time) {
	return o.DayStart(m.First()), o.DayStart(m.Next().First()).Add(-time.Millisecond)
}

// ToInstant reads a form value as wall-clock time at offset o and returns
// the UTC instant. Accepted forms:
//
//	YYYY-MM-DD              midnight of that day
//	YYYY-MM-DDTHH:mm        (a space may replace the T)
//	YYYY-MM-DDTHH:mm:ss[.f]
//
// A value that already carries a zone designator (Z or ±HH:MM), with or
// without seconds, is an absolute instant and is only normalised to UTC.
func (o Offset) ToInstant(s string) (time.Time, error) {
	if len(s) == 10 {
		d, err := ParseDate(s)
		if err != nil {
			return time.Time{}, err
		}
		return o.DayStart(d), nil
	}
	if len(s) < 16 || (s[10] != 'T' && s[10] != ' ') {
		return time.Time{}, &ParseError{Input: s, Expected: "YYYY-MM-DDTHH:mm"}
	}
	d, err := ParseDate(s[:10])
	if err != nil {
		var re *RangeError
		if errors.As(err, &re) {
			re.Input = s
			return time.Time{}, re
		}
		return time.Time{}, &ParseError{Input: s, Expected: "YYYY-MM-DDTHH:mm"}
	}
	clock := s[11:]
	if strings.ContainsAny(clock, "Z+-") {
		v := s[:10] + "T" + clock
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, &ParseError{Input: s, Expected: time.RFC3339}
	}
	hh, mm, ss, ns, err := parseClock(s, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year, d.Month, d.Day, hh, mm, ss, ns, o.Location()).UTC(), nil
}

var zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}

// parseClock reads HH:mm, HH:mm:ss or HH:mm:ss.fraction.
func parseClock(input, clock string) (hh, mm, ss, ns int, err error) {
	bad := &ParseError{Input: input, Expected: "YYYY-MM-DDTHH:mm"}
	if len(clock) < 5 || clock[2] != ':' {
		return 0, 0, 0, 0, bad
	}
	var ok bool
	if hh, ok = atoiFixed(clock[0:2]); !ok {
		return 0, 0, 0, 0, bad
	}
	if mm, ok = atoiFixed(clock[3:5]); !ok {
		return 0, 0, 0, 0, bad
	}
	rest := clock[5:]
	if rest != "" {
		if len(rest) < 3 || rest[0] != ':' {
			return 0, 0, 0, 0, bad
		}
		if ss, ok = atoiFixed(rest[1:3]); !ok {
			return 0, 0, 0, 0, bad
		}
		if frac := rest[3:]; frac != "" {
			if frac[0] != '.' || len(frac) < 2 || len(frac) > 10 {
				return 0, 0, 0, 0, bad
			}
			digits := frac[1:]
			n, ok := atoiFixed(digits)
			if !ok {
				return 0, 0, 0, 0, bad
			}
			for i := len(digits); i < 9; i++ {
				n *= 10
			}
			ns = n
		}
	}
	switch {
	case hh > 23:
		return 0, 0, 0, 0, &RangeError{Input: input, Field: "hour", Value: hh}
	case mm > 59:
		return 0, 0, 0, 0, &RangeError{Input: input, Field: "minute", Value: mm}
	case ss > 59:
		return 0, 0, 0, 0, &RangeError{Input: input, Field: "second", Value: ss}
	}
	return hh, mm, ss, ns, nil
}

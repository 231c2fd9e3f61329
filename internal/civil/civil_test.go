package civil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cst = ChinaStandardTime

func mustInstant(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts.UTC()
}

func TestDateOf_LateUTCBucketsIntoNextDay(t *testing.T) {
	ts := mustInstant(t, "2026-03-14T23:30:00Z")
	assert.Equal(t, "2026-03-15", cst.DateOf(ts).String())
}

func TestDateOf_MidnightBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		instant string
		want    string
	}{
		{"exact local midnight", "2026-03-14T16:00:00Z", "2026-03-15"},
		{"one ms before local midnight", "2026-03-14T15:59:59.999Z", "2026-03-14"},
		{"utc midnight is 08:00 local", "2026-03-15T00:00:00Z", "2026-03-15"},
		{"new year local", "2025-12-31T16:00:00Z", "2026-01-01"},
		{"leap day", "2024-02-28T16:30:00Z", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cst.DateOf(mustInstant(t, tt.instant)).String())
		})
	}
}

func TestDateOf_IndependentOfHostZone(t *testing.T) {
	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	ts := mustInstant(t, "2026-03-14T23:30:00Z")
	var got []Date
	for _, name := range []string{"America/Los_Angeles", "Europe/London", "Asia/Tokyo", "UTC"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Skipf("zoneinfo unavailable: %v", err)
		}
		time.Local = loc
		got = append(got, cst.DateOf(ts.Local()))
		assert.Equal(t, mustInstant(t, "2026-03-14T16:00:00Z"), cst.DayStart(MustParseDate("2026-03-15")))
	}
	for _, d := range got {
		assert.Equal(t, "2026-03-15", d.String())
	}
}

func TestDayStartAndEnd(t *testing.T) {
	d := MustParseDate("2026-03-15")
	assert.Equal(t, mustInstant(t, "2026-03-14T16:00:00Z"), cst.DayStart(d))
	assert.Equal(t, mustInstant(t, "2026-03-15T15:59:59.999Z"), cst.DayEnd(d))
}

func TestInstantWithinItsDay(t *testing.T) {
	start := mustInstant(t, "2023-12-25T00:00:00Z")
	for ts := start; ts.Before(start.Add(500 * 24 * time.Hour)); ts = ts.Add(97 * time.Minute) {
		d := cst.DateOf(ts)
		assert.False(t, ts.Before(cst.DayStart(d)), "instant %s before start of %s", ts, d)
		assert.False(t, ts.After(cst.DayEnd(d)), "instant %s after end of %s", ts, d)
	}
}

func TestDayBoundsRoundTrip(t *testing.T) {
	d := MustParseDate("2023-01-01")
	for i := 0; i < 3*366; i++ {
		assert.Equal(t, d, cst.DateOf(cst.DayStart(d)))
		assert.Equal(t, d, cst.DateOf(cst.DayEnd(d)))
		d = d.AddDays(1)
	}
}

func TestMonthRange_FebruaryNonLeap(t *testing.T) {
	m, err := NewMonth(2026, 2)
	require.NoError(t, err)
	start, end := cst.MonthRange(m)
	assert.Equal(t, mustInstant(t, "2026-02-01T00:00:00+08:00"), start)
	assert.Equal(t, mustInstant(t, "2026-02-28T23:59:59.999+08:00"), end)
	assert.Equal(t, 28, m.Days())
}

func TestMonthRange_DecemberRollover(t *testing.T) {
	m := Month{Year: 2025, Month: time.December}
	_, end := cst.MonthRange(m)
	assert.Equal(t, mustInstant(t, "2025-12-31T23:59:59.999+08:00"), end)
	assert.Equal(t, Month{Year: 2026, Month: time.January}, m.Next())
	assert.Equal(t, m, m.Next().Prev())
	assert.Equal(t, Month{Year: 2025, Month: time.November}, m.Prev())
}

func TestMonthRange_ContainsExactlyItsDays(t *testing.T) {
	for _, ms := range []string{"2024-02", "2025-02", "2025-04", "2025-12", "2026-01"} {
		m, err := ParseMonth(ms)
		require.NoError(t, err)
		start, end := cst.MonthRange(m)
		for ts := start.Add(-36 * time.Hour); ts.Before(end.Add(36 * time.Hour)); ts = ts.Add(29 * time.Minute) {
			inside := !ts.Before(start) && !ts.After(end)
			assert.Equal(t, m.Contains(cst.DateOf(ts)), inside, "month %s instant %s", m, ts)
		}
	}
}

func TestMonthDays(t *testing.T) {
	assert.Equal(t, 29, Month{Year: 2024, Month: time.February}.Days())
	assert.Equal(t, 28, Month{Year: 1900, Month: time.February}.Days())
	assert.Equal(t, 29, Month{Year: 2000, Month: time.February}.Days())
	assert.Equal(t, 30, Month{Year: 2026, Month: time.April}.Days())
	assert.Equal(t, 31, Month{Year: 2026, Month: time.July}.Days())
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2025-12-31", MustParseDate("2026-01-01").AddDays(-1).String())
	assert.Equal(t, "2024-02-29", MustParseDate("2024-02-28").AddDays(1).String())
	assert.Equal(t, "2025-03-01", MustParseDate("2025-02-28").AddDays(1).String())
	assert.Equal(t, "2026-03-08", MustParseDate("2026-03-15").AddDays(-7).String())
}

func TestAddDays_RoundTrip(t *testing.T) {
	dates := []string{"2024-02-28", "2024-12-31", "2026-01-01", "2025-03-31"}
	for _, s := range dates {
		d := MustParseDate(s)
		for _, n := range []int{-4000, -366, -31, -1, 0, 1, 29, 365, 3650} {
			assert.Equal(t, d, d.AddDays(n).AddDays(-n), "date %s n %d", s, n)
		}
	}
}

func TestAddMonths_ClampsDay(t *testing.T) {
	assert.Equal(t, "2024-02-29", MustParseDate("2024-01-31").AddMonths(1).String())
	assert.Equal(t, "2025-02-28", MustParseDate("2025-01-31").AddMonths(1).String())
	assert.Equal(t, "2025-12-06", MustParseDate("2026-01-06").AddMonths(-1).String())
	assert.Equal(t, "2032-01-06", MustParseDate("2026-01-06").AddMonths(72).String())
}

func TestMonthsBetween(t *testing.T) {
	birth := MustParseDate("2026-01-06")
	assert.Equal(t, 0, MonthsBetween(birth, MustParseDate("2026-02-05")))
	assert.Equal(t, 1, MonthsBetween(birth, MustParseDate("2026-02-06")))
	assert.Equal(t, 9, MonthsBetween(birth, MustParseDate("2026-10-19")))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 7, DaysBetween(MustParseDate("2026-03-08"), MustParseDate("2026-03-15")))
	assert.Equal(t, -1, DaysBetween(MustParseDate("2026-01-01"), MustParseDate("2025-12-31")))
	assert.Equal(t, 366, DaysBetween(MustParseDate("2024-01-01"), MustParseDate("2025-01-01")))
}

func TestToInstant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-15", "2026-03-14T16:00:00Z"},
		{"2026-03-15T07:30", "2026-03-14T23:30:00Z"},
		{"2026-03-15 07:30", "2026-03-14T23:30:00Z"},
		{"2026-03-15T07:30:15", "2026-03-14T23:30:15Z"},
		{"2026-03-15T07:30:15.250", "2026-03-14T23:30:15.25Z"},
		{"2026-03-15T07:30:00Z", "2026-03-15T07:30:00Z"},
		{"2026-03-15T07:30:00+09:00", "2026-03-14T22:30:00Z"},
		{"2026-03-15T10:00+08:00", "2026-03-15T02:00:00Z"},
		{"2026-03-15T10:00Z", "2026-03-15T10:00:00Z"},
		{"2026-03-15 10:00-05:00", "2026-03-15T15:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cst.ToInstant(tt.in)
			require.NoError(t, err)
			assert.Equal(t, mustInstant(t, tt.want), got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestToInstant_Errors(t *testing.T) {
	parseCases := []string{"", "yesterday", "2026/03/15", "2026-03-15T7:30", "2026-03-15T07-30", "2026-03-15T07:30:1x"}
	for _, in := range parseCases {
		_, err := cst.ToInstant(in)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "input %q: got %v", in, err)
		if pe != nil {
			assert.Equal(t, in, pe.Input)
		}
	}

	rangeCases := []string{"2026-13-01", "2026-02-30", "2026-03-15T24:00", "2026-03-15T07:60"}
	for _, in := range rangeCases {
		_, err := cst.ToInstant(in)
		var re *RangeError
		assert.True(t, errors.As(err, &re), "input %q: got %v", in, err)
	}
}

func TestNewMonth_Range(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		_, err := NewMonth(2026, m)
		var re *RangeError
		assert.True(t, errors.As(err, &re))
	}
	_, err := ParseMonth("2026-1")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestParseOffset(t *testing.T) {
	o, err := ParseOffset("+08:00")
	require.NoError(t, err)
	assert.Equal(t, ChinaStandardTime, o)
	assert.Equal(t, "+08:00", o.String())

	o, err = ParseOffset("-05:30")
	require.NoError(t, err)
	assert.Equal(t, "-05:30", o.String())

	_, err = ParseOffset("+8")
	assert.Error(t, err)
	_, err = ParseOffset("+15:00")
	assert.Error(t, err)
}

func TestHour(t *testing.T) {
	assert.Equal(t, 19, cst.Hour(mustInstant(t, "2026-03-15T11:00:00Z")))
	assert.Equal(t, 7, cst.Hour(mustInstant(t, "2026-03-14T23:00:00Z")))
}

func TestDateText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2026-03-15")))
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", string(b))
	assert.Equal(t, time.Sunday, d.Weekday())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
}

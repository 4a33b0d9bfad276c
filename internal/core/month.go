package core

import (
	"errors"
	"fmt"
	"time"
)

// Month is a calendar month in zero-padded "yyyy-MM" form. Because both parts
// are zero-padded, plain string comparison orders months chronologically.
type Month string

const monthLayout = "2006-01"

// ErrInvalidMonthString is returned when a string is not a valid "yyyy-MM" month.
var ErrInvalidMonthString = errors.New("invalid month string")

// ParseMonth validates s and returns it as a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil || len(s) != len(monthLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthString, s)
	}
	return MonthOf(t), nil
}

// NewMonth builds a Month from a year and a 1-based month number.
// Out-of-range month numbers are normalized (13 becomes January of the next year).
func NewMonth(year, month int) Month {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t)
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// Valid reports whether m is a well-formed month string.
func (m Month) Valid() bool {
	_, err := ParseMonth(string(m))
	return err == nil
}

// YearMonth splits m into its year and 1-based month number.
// ok is false if m is malformed.
func (m Month) YearMonth() (year, month int, ok bool) {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// AddMonths shifts m by n months (n may be negative). A malformed m is returned unchanged.
func (m Month) AddMonths(n int) Month {
	y, mo, ok := m.YearMonth()
	if !ok {
		return m
	}
	return NewMonth(y, mo+n)
}

// Next returns the following month; December rolls over into January of the next year.
func (m Month) Next() Month {
	return m.AddMonths(1)
}

// Prev returns the preceding month; January rolls back into December of the previous year.
func (m Month) Prev() Month {
	return m.AddMonths(-1)
}

// FirstDay returns the first calendar day of m.
func (m Month) FirstDay() Date {
	y, mo, _ := m.YearMonth()
	return NewDate(y, mo, 1)
}

// LastDay returns the last calendar day of m.
func (m Month) LastDay() Date {
	y, mo, _ := m.YearMonth()
	return NewDate(y, mo, DaysIn(y, mo))
}

// Day returns the given day within m, clamped to the month's length.
func (m Month) Day(day int) Date {
	y, mo, _ := m.YearMonth()
	return ClampedDate(y, mo, day)
}

// index counts months since year 0, used for cadence arithmetic.
func (m Month) index() int {
	y, mo, _ := m.YearMonth()
	return y*12 + mo - 1
}

// MonthsBetween returns the signed number of months from a to b.
func MonthsBetween(a, b Month) int {
	return b.index() - a.index()
}

// String implements fmt.Stringer.
func (m Month) String() string {
	return string(m)
}

// CompareMonths returns -1, 0 or 1 as a is before, equal to or after b.
func CompareMonths(a, b Month) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MonthsInRange returns the inclusive ascending sequence of months from start to end.
// The result is empty if start is after end or either bound is malformed.
func MonthsInRange(start, end Month) []Month {
	if !start.Valid() || !end.Valid() || start > end {
		return nil
	}
	months := make([]Month, 0, MonthsBetween(start, end)+1)
	for m := start; m <= end; m = m.Next() {
		months = append(months, m)
	}
	return months
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds year-month-day, moving day back to the month's last day when the
// month is shorter (the 31st of February becomes the 28th or 29th). Days below 1 become 1.
func ClampedDate(year, month, day int) Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

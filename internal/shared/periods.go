package shared

import (
	"fmt"
	"time"
)

// Boundary formats for dates and accounting periods.
const (
	DateLayout   = "2006-01-02"
	PeriodLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, raw)
	}
	return t, nil
}

// ParsePeriod parses a YYYY-MM period into the first day of that month.
func ParsePeriod(raw string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: period %q must be YYYY-MM", ErrValidation, raw)
	}
	return t, nil
}

// PeriodOf formats the accounting period containing t.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// MonthStart returns midnight UTC of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns midnight UTC of the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package calendar provides a civil date type used to key daily snapshots and queries.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the canonical textual form of a Date
const Layout = "2006-01-02"

// Date is a calendar day with no time-of-day or location attached
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse parses a YYYY-MM-DD string
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Of returns the calendar day of t in t's own location
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Of(now.In(loc))
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthKey returns the YYYY-MM folder key for the date
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// Midnight returns the start of the day in loc
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return Of(d.Midnight(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// DaysUntil returns the number of whole days from d to other
func (d Date) DaysUntil(other Date) int {
	return int(other.Midnight(time.UTC).Sub(d.Midnight(time.UTC)).Hours() / 24)
}

// Span returns every day from start to end inclusive, in ascending order.
// It returns nil when end is before start.
func Span(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	days := make([]Date, 0, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

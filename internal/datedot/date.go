package datedot

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-datedots/internal/config"
)

// InvalidDateError reports a calendar date whose month/day combination does
// not exist. Feb 29 is always accepted as a stored value; leap handling is
// the recurrence engine's concern.
type InvalidDateError struct {
	Month time.Month
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date: month=%d day=%d", e.Month, e.Day)
}

// CalendarDate is a recurring month/day pair with an optional year.
// Year == 0 means "recurring, age unknown" (e.g. a vCard --MM-DD birthday).
type CalendarDate struct {
	Month time.Month
	Day   int
	Year  int
}

// daysInMonth uses the maximum length of each month; Feb 29 is permitted
// regardless of leap status.
var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// YearKnown reports whether the date carries a year component.
func (d CalendarDate) YearKnown() bool {
	return d.Year != 0
}

// Validate checks the month/day combination.
func (d CalendarDate) Validate() error {
	if d.Month < time.January || d.Month > time.December {
		return &InvalidDateError{Month: d.Month, Day: d.Day}
	}
	if d.Day < 1 || d.Day > daysInMonth[d.Month] {
		return &InvalidDateError{Month: d.Month, Day: d.Day}
	}
	return nil
}

// Equalized returns the year-independent "MM-DD" sort key.
func (d CalendarDate) Equalized() string {
	return fmt.Sprintf("%02d-%02d", int(d.Month), d.Day)
}

// Canonical returns the deterministic serialization used for key hashing:
// "2006-01-02" when the year is known, "--01-02" otherwise.
func (d CalendarDate) Canonical() string {
	if d.YearKnown() {
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("--%02d-%02d", int(d.Month), d.Day)
}

func (d CalendarDate) String() string {
	return d.Canonical()
}

// FromTime converts a concrete timestamp into a CalendarDate, stripping the
// time-of-day. yearKnown false drops the year component entirely.
func FromTime(t time.Time, yearKnown bool) CalendarDate {
	d := CalendarDate{Month: t.Month(), Day: t.Day()}
	if yearKnown {
		d.Year = t.Year()
	}
	return d
}

// StartOfDay truncates a timestamp to midnight in its own location.
// This is the shared normalization rule: no stored record carries a
// time-of-day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Time materializes the date as midnight of the given year. Callers that
// need the stored year should pass d.Year; year-unknown dates are carried
// on the leap-safe placeholder year.
func (d CalendarDate) Time(year int, loc *time.Location) time.Time {
	if year == 0 {
		year = config.DefaultLeapYear
	}
	return time.Date(year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

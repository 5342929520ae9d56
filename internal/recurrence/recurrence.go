// Package recurrence derives the next upcoming occurrence of a stored
// calendar date. It is a stateless pure computation, safe for concurrent
// use; "today" is always passed in so callers control the clock.
package recurrence

import (
	"math"
	"time"

	"github.com/tartampluch/go-datedots/internal/datedot"
)

// Occurrence is the result of projecting a calendar date onto the next
// matching day relative to "today".
type Occurrence struct {
	// Date is the next occurrence at start of day, in today's location.
	Date time.Time

	// DaysUntil is the whole-day distance from today. Zero means the
	// occurrence is today.
	DaysUntil int

	// Age is the age in years turned at Date. Only valid when AgeKnown.
	Age      int
	AgeKnown bool
}

// Next computes the upcoming occurrence of d relative to today.
//
// The candidate is built in today's year and advanced to the next year when
// it has already passed (strictly before the start of today). A Feb 29 date
// lands on Feb 28 in non-leap years, never March 1, so a leapling's day
// is deterministic regardless of which year is being evaluated.
func Next(d datedot.CalendarDate, today time.Time) (Occurrence, error) {
	if err := d.Validate(); err != nil {
		return Occurrence{}, err
	}

	loc := today.Location()
	todayStart := datedot.StartOfDay(today)

	candidate := In(todayStart.Year(), d, loc)
	if candidate.Before(todayStart) {
		candidate = In(todayStart.Year()+1, d, loc)
	}

	occ := Occurrence{
		Date:      candidate,
		DaysUntil: daysBetween(todayStart, candidate),
	}
	if d.YearKnown() {
		occ.Age = candidate.Year() - d.Year
		occ.AgeKnown = true
	}
	return occ, nil
}

// In materializes the date in a concrete year, applying the Feb 29 ->
// Feb 28 normalization for non-leap years. The feed builder uses it to
// stamp events for arbitrary years with the same policy as Next.
func In(year int, d datedot.CalendarDate, loc *time.Location) time.Time {
	day := d.Day
	if d.Month == time.February && d.Day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, d.Month, day, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b (both at start of day).
// Rounding absorbs DST transitions that make a day 23 or 25 hours long.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

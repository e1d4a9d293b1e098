package due

import (
	"fmt"
	"time"
)

// NextDate computes the next due day for a calendar-family task from
// the day it was last performed.
func NextDate(last time.Time, unit Unit, interval int) (time.Time, error) {
	if interval <= 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
	}
	day := Today(last)
	switch unit {
	case UnitDays:
		return day.AddDate(0, 0, interval), nil
	case UnitWeeks:
		return day.AddDate(0, 0, interval*7), nil
	case UnitMonths:
		return addMonths(day, interval), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a calendar unit", ErrUnknownUnit, unit)
}

// addMonths advances by whole calendar months, clamping the day of
// month to the target month's length. Jan 31 plus one month lands on
// the last day of February, never on March overflow.
func addMonths(day time.Time, months int) time.Time {
	first := time.Date(day.Year(), day.Month()+time.Month(months), 1, 0, 0, 0, 0, day.Location())
	dom := day.Day()
	if last := lastDayOfMonth(first); dom > last {
		dom = last
	}
	return time.Date(first.Year(), first.Month(), dom, 0, 0, 0, 0, first.Location())
}

// lastDayOfMonth returns the number of days in the month containing t.
// Day zero of the following month normalizes backwards to the final day
// of this one.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DateDue reports whether a computed due day has arrived. Comparison is
// by calendar day: a task becomes due at midnight of its due date and
// stays due until completed again.
func DateDue(next, now time.Time) bool {
	return !Today(now).Before(Today(next))
}

package due

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate reports a stored date that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// dateLayout is the canonical YYYY-MM-DD storage form.
const dateLayout = "2006-01-02"

// ParseDate parses a stored date into local midnight of that calendar
// day. Values carrying a time component ("2024-03-09T14:30:00+01:00" or
// "2024-03-09 14:30") are accepted with everything past the date portion
// dropped, since schedules are day-granular.
func ParseDate(s string) (time.Time, error) {
	datePart := s
	if i := strings.IndexAny(s, "T "); i >= 0 {
		datePart = s[:i]
	}
	t, err := time.ParseInLocation(dateLayout, datePart, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders a day in its canonical YYYY-MM-DD form. Formatting
// a parsed date reproduces the original string.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Today truncates a wall-clock instant to midnight of its calendar day.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

package due

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit reports a recurrence unit outside the supported set.
var ErrUnknownUnit = errors.New("unknown recurrence unit")

// Unit is the recurrence unit of a maintenance task. Calendar units
// advance a schedule from the date the task was last performed; counter
// units advance it from the counter value recorded at that time.
type Unit string

const (
	UnitDays       Unit = "days"
	UnitWeeks      Unit = "weeks"
	UnitMonths     Unit = "months"
	UnitKilometers Unit = "kilometers"
	UnitMiles      Unit = "miles"
)

// Units lists every supported recurrence unit.
var Units = []Unit{UnitDays, UnitWeeks, UnitMonths, UnitKilometers, UnitMiles}

// Family groups units by how their schedules advance.
type Family int

const (
	FamilyCalendar Family = iota
	FamilyCounter
)

// Family reports the scheduling family of the unit. Only meaningful for
// valid units; callers gate raw input through ParseUnit first.
func (u Unit) Family() Family {
	if u == UnitKilometers || u == UnitMiles {
		return FamilyCounter
	}
	return FamilyCalendar
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitKilometers, UnitMiles:
		return true
	}
	return false
}

// ParseUnit validates a raw unit string from storage or user input.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

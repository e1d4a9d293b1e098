package due

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInterval reports a recurrence interval that is zero or
// negative.
var ErrInvalidInterval = errors.New("invalid interval")

// Task is the resolver's read-only view of a stored maintenance task.
// The storage layer converts its rows into this shape; the resolver
// never touches storage itself.
type Task struct {
	ID            string
	Interval      int
	Unit          Unit
	LastPerformed string   // YYYY-MM-DD, empty when never performed
	LastCounter   *float64 // counter reading at last completion, nil when unknown
	CounterSource string   // live reading source id, empty when none configured
}

// Readings is a point-in-time snapshot of live counter values keyed by
// source id, gathered before resolution starts. Sources that could not
// be read are simply absent.
type Readings map[string]float64

// Value returns the reading for a source. A missing key or a non-finite
// value reports ok false.
func (r Readings) Value(sourceID string) (float64, bool) {
	v, ok := r[sourceID]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Kind tags a Descriptor with the family that produced it.
type Kind string

const (
	KindDate    Kind = "date"
	KindCounter Kind = "counter"
)

// UnknownRank orders descriptors whose urgency cannot be computed after
// every ranked one.
var UnknownRank = math.Inf(1)

// Descriptor is the resolved due point of a single task. Descriptors
// are recomputed on every pass and never persisted.
//
// Rank is a single urgency scalar: for date kind, whole calendar days
// until due (negative once overdue); for counter kind, remaining
// counter units; UnknownRank when no urgency can be computed. Sorting
// ascending by Rank therefore lists the most overdue task first and
// unresolvable tasks last.
type Descriptor struct {
	TaskID         string
	Kind           Kind
	NextDueDate    time.Time // date kind only
	NextDueCounter float64   // counter kind, meaningful when HasNextCounter
	HasNextCounter bool
	Due            bool
	Rank           float64
}

// Resolve computes the due point of one task against a frozen clock and
// reading snapshot.
//
// Failure splits two ways. Malformed tasks (non-positive interval,
// unknown unit, unparsable last-performed date) return an error wrapping
// the matching sentinel, and callers skip just that task. Missing data
// is not an error: a calendar task never performed resolves as due
// today, and a counter task without a baseline or a live reading
// resolves as not due with UnknownRank.
func Resolve(t Task, now time.Time, readings Readings) (Descriptor, error) {
	if t.Interval <= 0 {
		return Descriptor{}, fmt.Errorf("task %s: %w: %d", t.ID, ErrInvalidInterval, t.Interval)
	}
	if !t.Unit.Valid() {
		return Descriptor{}, fmt.Errorf("task %s: %w: %q", t.ID, ErrUnknownUnit, string(t.Unit))
	}
	if t.Unit.Family() == FamilyCounter {
		return resolveCounter(t, readings), nil
	}
	return resolveDate(t, now)
}

func resolveDate(t Task, now time.Time) (Descriptor, error) {
	d := Descriptor{TaskID: t.ID, Kind: KindDate}

	if t.LastPerformed == "" {
		// Never performed: surface immediately rather than hiding the
		// task until someone completes it once.
		d.NextDueDate = Today(now)
		d.Due = true
		d.Rank = 0
		return d, nil
	}

	last, err := ParseDate(t.LastPerformed)
	if err != nil {
		return Descriptor{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	next, err := NextDate(last, t.Unit, t.Interval)
	if err != nil {
		return Descriptor{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	d.NextDueDate = next
	d.Due = DateDue(next, now)
	d.Rank = daysBetween(Today(now), next)
	return d, nil
}

func resolveCounter(t Task, readings Readings) Descriptor {
	d := Descriptor{TaskID: t.ID, Kind: KindCounter, Rank: UnknownRank}

	if t.LastCounter == nil {
		// No baseline reading: the due point is undefined, so the task
		// stays listed but cannot come due until a completion records one.
		return d
	}
	next := NextCounter(*t.LastCounter, float64(t.Interval))
	d.NextDueCounter = next
	d.HasNextCounter = true

	current, ok := readings.Value(t.CounterSource)
	if !ok {
		return d
	}
	d.Due = CounterDue(next, current, true)
	d.Rank = next - current
	return d
}

// daysBetween counts whole calendar days from a to b, negative when b
// precedes a. Both ends are normalized to midnight first so daylight
// saving shifts cannot skew the count.
func daysBetween(a, b time.Time) float64 {
	return math.Round(Today(b).Sub(Today(a)).Hours() / 24)
}

package report

import (
	"fmt"
	"sort"
	"time"

	"upkeep/internal/db"
	"upkeep/internal/due"
)

// Entry pairs a stored task with its resolved due point
type Entry struct {
	Task       db.Task
	Descriptor due.Descriptor
	// Current is the live reading used during resolution, when the
	// task's source had one
	Current    float64
	HasCurrent bool
}

// Problem records a task that could not be resolved
type Problem struct {
	TaskID string
	Title  string
	Err    error
}

// Overview resolves every task against one clock and one reading
// snapshot, returning entries sorted most urgent first. A malformed
// task becomes a Problem instead of aborting the batch, so one bad row
// never hides the rest.
func Overview(tasks []db.Task, readings due.Readings, now time.Time) ([]Entry, []Problem) {
	entries := make([]Entry, 0, len(tasks))
	var problems []Problem

	for _, task := range tasks {
		in := task.DueInput()
		d, err := due.Resolve(in, now, readings)
		if err != nil {
			problems = append(problems, Problem{TaskID: task.ID, Title: task.Title, Err: err})
			continue
		}

		e := Entry{Task: task, Descriptor: d}
		if in.Unit.Family() == due.FamilyCounter {
			if v, ok := readings.Value(in.CounterSource); ok {
				e.Current = v
				e.HasCurrent = true
			}
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return due.Compare(entries[i].Descriptor, entries[j].Descriptor) < 0
	})

	return entries, problems
}

// DueCount returns how many entries are currently due
func DueCount(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Descriptor.Due {
			n++
		}
	}
	return n
}

// NextDueLabel renders the entry's due point for task listings: a date
// for calendar tasks, a counter target for counter tasks, "unknown"
// when no due point exists yet
func (e Entry) NextDueLabel() string {
	d := e.Descriptor
	if d.Kind == due.KindCounter {
		if !d.HasNextCounter {
			return "unknown"
		}
		return fmt.Sprintf("%.0f %s", d.NextDueCounter, e.Task.IntervalUnit)
	}
	return due.FormatDate(d.NextDueDate)
}

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"upkeep/internal/due"
)

// Task represents a recurring maintenance task in the database
type Task struct {
	ID             string
	Title          string
	Category       sql.NullString
	ItemName       sql.NullString
	Icon           sql.NullString
	TagID          sql.NullString
	IntervalValue  int
	IntervalUnit   string
	LastPerformed  sql.NullString // YYYY-MM-DD
	LastOdometer   sql.NullFloat64
	OdometerSource sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Completion represents one completion log entry for a task
type Completion struct {
	ID          int
	TaskID      string
	CompletedOn string // YYYY-MM-DD
	Odometer    sql.NullFloat64
	Notes       sql.NullString
	CreatedAt   time.Time
}

// DueInput converts the stored row into the resolver's view of the task
func (t Task) DueInput() due.Task {
	in := due.Task{
		ID:       t.ID,
		Interval: t.IntervalValue,
		Unit:     due.Unit(t.IntervalUnit),
	}
	if t.LastPerformed.Valid {
		in.LastPerformed = t.LastPerformed.String
	}
	if t.LastOdometer.Valid {
		v := t.LastOdometer.Float64
		in.LastCounter = &v
	}
	if t.OdometerSource.Valid {
		in.CounterSource = t.OdometerSource.String
	}
	return in
}

// NewTaskID returns a fresh storage id for a task
func NewTaskID() string {
	u := uuid.New()
	return fmt.Sprintf("task_%x", u[:])
}

// NewNullString creates a sql.NullString from a string
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// NewNullFloat64 creates a sql.NullFloat64 from an optional value
func NewNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

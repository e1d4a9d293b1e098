package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"upkeep/internal/due"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection
func Open(dbPath string) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'upkeep -init' to create it", dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// ListTasks returns all tasks ordered by title
func (db *DB) ListTasks() ([]Task, error) {
	query := `
		SELECT
			id, title, category, item_name, icon, tag_id,
			interval_value, interval_unit, last_performed,
			last_odometer, odometer_source,
			created_at, updated_at
		FROM tasks
		ORDER BY title
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		err := rows.Scan(
			&t.ID, &t.Title, &t.Category, &t.ItemName, &t.Icon, &t.TagID,
			&t.IntervalValue, &t.IntervalUnit, &t.LastPerformed,
			&t.LastOdometer, &t.OdometerSource,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		// Clean up the title field - remove newlines and trim whitespace
		t.Title = strings.TrimSpace(strings.ReplaceAll(t.Title, "\n", " "))

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetTask retrieves a single task by ID
func (db *DB) GetTask(id string) (*Task, error) {
	query := `
		SELECT
			id, title, category, item_name, icon, tag_id,
			interval_value, interval_unit, last_performed,
			last_odometer, odometer_source,
			created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	var t Task
	err := db.conn.QueryRow(query, id).Scan(
		&t.ID, &t.Title, &t.Category, &t.ItemName, &t.Icon, &t.TagID,
		&t.IntervalValue, &t.IntervalUnit, &t.LastPerformed,
		&t.LastOdometer, &t.OdometerSource,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// AddTask validates and inserts a new task, returning its generated ID.
// An empty last-performed date defaults to today so a fresh task starts
// its first interval immediately.
func (db *DB) AddTask(task Task) (string, error) {
	if err := normalizeTask(&task); err != nil {
		return "", err
	}
	task.ID = NewTaskID()

	query := `
		INSERT INTO tasks (
			id, title, category, item_name, icon, tag_id,
			interval_value, interval_unit, last_performed,
			last_odometer, odometer_source,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := db.conn.Exec(query,
		task.ID,
		task.Title,
		task.Category,
		task.ItemName,
		task.Icon,
		task.TagID,
		task.IntervalValue,
		task.IntervalUnit,
		task.LastPerformed,
		task.LastOdometer,
		task.OdometerSource,
	)
	if err != nil {
		return "", fmt.Errorf("inserting task: %w", err)
	}

	return task.ID, nil
}

// UpdateTask updates all fields of a task
func (db *DB) UpdateTask(task Task) error {
	if err := normalizeTask(&task); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = ?,
		    category = ?,
		    item_name = ?,
		    icon = ?,
		    tag_id = ?,
		    interval_value = ?,
		    interval_unit = ?,
		    last_performed = ?,
		    last_odometer = ?,
		    odometer_source = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := db.conn.Exec(query,
		task.Title,
		task.Category,
		task.ItemName,
		task.Icon,
		task.TagID,
		task.IntervalValue,
		task.IntervalUnit,
		task.LastPerformed,
		task.LastOdometer,
		task.OdometerSource,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	return nil
}

// CompleteTask marks a task as performed today and appends a completion
// log entry. A supplied odometer reading becomes the new baseline for
// counter-based tasks; without one the stored baseline is left alone.
func (db *DB) CompleteTask(taskID string, odometer *float64, notes string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	today := due.FormatDate(due.Today(time.Now()))

	if odometer != nil {
		updateQuery := `
			UPDATE tasks
			SET last_performed = ?,
			    last_odometer = ?,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		if _, err := tx.Exec(updateQuery, today, *odometer, taskID); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
	} else {
		updateQuery := `
			UPDATE tasks
			SET last_performed = ?,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		if _, err := tx.Exec(updateQuery, today, taskID); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
	}

	logQuery := `
		INSERT INTO task_completions (task_id, completed_on, odometer, notes)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.Exec(logQuery, taskID, today, NewNullFloat64(odometer), NewNullString(notes)); err != nil {
		return fmt.Errorf("inserting completion log: %w", err)
	}

	return tx.Commit()
}

// GetTaskCompletions retrieves recent completion logs for a task
func (db *DB) GetTaskCompletions(taskID string, limit int) ([]Completion, error) {
	query := `
		SELECT
			id, task_id, completed_on, odometer, notes, created_at
		FROM task_completions
		WHERE task_id = ?
		ORDER BY completed_on DESC, id DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(query, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying completions: %w", err)
	}
	defer rows.Close()

	var completions []Completion
	for rows.Next() {
		var c Completion
		err := rows.Scan(
			&c.ID, &c.TaskID, &c.CompletedOn,
			&c.Odometer, &c.Notes, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// DeleteTask permanently deletes a task and all associated completions
func (db *DB) DeleteTask(taskID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete completion logs first (foreign key constraint)
	_, err = tx.Exec(`DELETE FROM task_completions WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("deleting completion logs: %w", err)
	}

	// Delete the task
	_, err = tx.Exec(`DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	return tx.Commit()
}

// normalizeTask validates the recurrence fields and canonicalizes the
// last-performed date before a row is written. Dates arriving with a
// time component are reduced to their calendar day; an empty date
// defaults to today.
func normalizeTask(task *Task) error {
	if task.IntervalValue <= 0 {
		return fmt.Errorf("task %q: %w: %d", task.Title, due.ErrInvalidInterval, task.IntervalValue)
	}

	unit, err := due.ParseUnit(task.IntervalUnit)
	if err != nil {
		return fmt.Errorf("task %q: %w", task.Title, err)
	}
	task.IntervalUnit = string(unit)

	if task.LastPerformed.Valid && task.LastPerformed.String != "" {
		day, err := due.ParseDate(task.LastPerformed.String)
		if err != nil {
			return fmt.Errorf("task %q: %w", task.Title, err)
		}
		task.LastPerformed = NewNullString(due.FormatDate(day))
	} else {
		task.LastPerformed = NewNullString(due.FormatDate(due.Today(time.Now())))
	}

	return nil
}

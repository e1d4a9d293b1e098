package db

import (
	"fmt"
	"time"

	"upkeep/internal/due"
)

// CreateFixturesDatabase creates a test database with realistic sample data
func CreateFixturesDatabase(dbPath string) error {
	// Initialize empty database
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	// Open database to add test data
	database, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	daysAgo := func(n int) string {
		return due.FormatDate(time.Now().AddDate(0, 0, -n))
	}

	// Add fixture tasks
	fixtures := []Task{
		// Home upkeep
		{
			Title:         "Replace HVAC filter",
			Category:      NewNullString("Home"),
			ItemName:      NewNullString("Furnace"),
			Icon:          NewNullString("mdi:air-filter"),
			IntervalValue: 3,
			IntervalUnit:  "months",
			LastPerformed: NewNullString(daysAgo(120)),
		},
		{
			Title:         "Test smoke detectors",
			Category:      NewNullString("Home"),
			ItemName:      NewNullString("Smoke detectors"),
			Icon:          NewNullString("mdi:smoke-detector"),
			IntervalValue: 1,
			IntervalUnit:  "months",
			LastPerformed: NewNullString(daysAgo(20)),
		},
		{
			Title:         "Clean gutters",
			Category:      NewNullString("Home"),
			ItemName:      NewNullString("Gutters"),
			Icon:          NewNullString("mdi:home-roof"),
			IntervalValue: 6,
			IntervalUnit:  "months",
			LastPerformed: NewNullString(daysAgo(60)),
		},

		// Kitchen appliances
		{
			Title:         "Descale coffee machine",
			Category:      NewNullString("Kitchen"),
			ItemName:      NewNullString("Espresso machine"),
			Icon:          NewNullString("mdi:coffee-maker"),
			IntervalValue: 6,
			IntervalUnit:  "weeks",
			LastPerformed: NewNullString(daysAgo(10)),
		},
		{
			Title:         "Replace water filter",
			Category:      NewNullString("Kitchen"),
			ItemName:      NewNullString("Refrigerator"),
			Icon:          NewNullString("mdi:water-pump"),
			TagID:         NewNullString("tag_fridge_filter"),
			IntervalValue: 6,
			IntervalUnit:  "months",
			LastPerformed: NewNullString(daysAgo(150)),
		},

		// Car, tracked against the live odometer
		{
			Title:          "Engine oil change",
			Category:       NewNullString("Car"),
			ItemName:       NewNullString("Engine"),
			Icon:           NewNullString("mdi:oil"),
			IntervalValue:  5000,
			IntervalUnit:   "kilometers",
			LastPerformed:  NewNullString(daysAgo(90)),
			LastOdometer:   NewNullFloat64(ptr(50000)),
			OdometerSource: NewNullString("car.odometer"),
		},
		{
			Title:          "Rotate tires",
			Category:       NewNullString("Car"),
			ItemName:       NewNullString("Tires"),
			Icon:           NewNullString("mdi:tire"),
			IntervalValue:  10000,
			IntervalUnit:   "kilometers",
			LastPerformed:  NewNullString(daysAgo(180)),
			LastOdometer:   NewNullFloat64(ptr(48000)),
			OdometerSource: NewNullString("car.odometer"),
		},
		{
			Title:         "Replace brake fluid",
			Category:      NewNullString("Car"),
			ItemName:      NewNullString("Brakes"),
			Icon:          NewNullString("mdi:car-brake-alert"),
			IntervalValue: 24,
			IntervalUnit:  "months",
			LastPerformed: NewNullString(daysAgo(600)),
		},

		// Motorcycle, miles based
		{
			Title:          "Chain lubrication",
			Category:       NewNullString("Motorcycle"),
			ItemName:       NewNullString("Drive chain"),
			Icon:           NewNullString("mdi:link-variant"),
			IntervalValue:  500,
			IntervalUnit:   "miles",
			LastPerformed:  NewNullString(daysAgo(30)),
			LastOdometer:   NewNullFloat64(ptr(12100)),
			OdometerSource: NewNullString("motorcycle.odometer"),
		},
		// No baseline yet: stays listed but cannot come due until the
		// first completion records an odometer reading
		{
			Title:          "Replace brake pads",
			Category:       NewNullString("Motorcycle"),
			ItemName:       NewNullString("Brakes"),
			Icon:           NewNullString("mdi:car-brake-worn-linings"),
			IntervalValue:  20000,
			IntervalUnit:   "miles",
			OdometerSource: NewNullString("motorcycle.odometer"),
		},
	}

	// Add all fixture tasks and track their IDs
	taskIDs := make(map[string]string)
	for _, task := range fixtures {
		id, err := database.AddTask(task)
		if err != nil {
			return fmt.Errorf("adding fixture task %s: %w", task.Title, err)
		}
		taskIDs[task.Title] = id
	}

	// Add some completion history using the task IDs
	history := []struct {
		taskTitle string
		daysAgo   int
		odometer  *float64
		notes     string
	}{
		{"Engine oil change", 270, ptr(45000), "5W-30 synthetic, new drain plug washer"},
		{"Engine oil change", 90, ptr(50000), "5W-30 synthetic"},
		{"Replace HVAC filter", 120, nil, "MERV 13 installed"},
		{"Replace water filter", 150, nil, ""},
		{"Test smoke detectors", 20, nil, "All units responding"},
		{"Chain lubrication", 30, ptr(12100), ""},
	}

	for _, h := range history {
		taskID, exists := taskIDs[h.taskTitle]
		if !exists {
			continue // Skip if task not found
		}

		if err := database.addCompletion(taskID, daysAgo(h.daysAgo), h.odometer, h.notes); err != nil {
			return fmt.Errorf("adding completion history for %s: %w", h.taskTitle, err)
		}
	}

	return nil
}

// addCompletion backfills a completion log entry on a past date. Only
// fixtures need this; live completions go through CompleteTask.
func (db *DB) addCompletion(taskID, completedOn string, odometer *float64, notes string) error {
	query := `
		INSERT INTO task_completions (task_id, completed_on, odometer, notes)
		VALUES (?, ?, ?, ?)
	`
	_, err := db.conn.Exec(query, taskID, completedOn, NewNullFloat64(odometer), NewNullString(notes))
	if err != nil {
		return fmt.Errorf("inserting completion: %w", err)
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

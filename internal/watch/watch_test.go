package watch

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"upkeep/internal/config"
	"upkeep/internal/db"
	"upkeep/internal/due"
	"upkeep/internal/odometer"
)

func openTestStore(t *testing.T) (*db.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watch.db")
	if err := db.Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	store, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func addTask(t *testing.T, store *db.DB, task db.Task) string {
	t.Helper()
	id, err := store.AddTask(task)
	if err != nil {
		t.Fatalf("AddTask %q: %v", task.Title, err)
	}
	return id
}

func staticBackend(t *testing.T, values map[string]float64) odometer.Backend {
	t.Helper()
	m, err := odometer.NewManager(config.OdometerConfig{Backend: "static", Values: values})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m.Backend()
}

func daysAgo(n int) string {
	return due.FormatDate(due.Today(time.Now()).AddDate(0, 0, -n))
}

func TestRunPassCounts(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)

	// Overdue by roughly three months.
	addTask(t, store, db.Task{
		Title:         "Replace HVAC filter",
		IntervalValue: 1,
		IntervalUnit:  "months",
		LastPerformed: db.NewNullString(daysAgo(120)),
	})
	// Performed today, due again in six months.
	addTask(t, store, db.Task{
		Title:         "Test smoke detectors",
		IntervalValue: 6,
		IntervalUnit:  "months",
	})
	// 1000 km to go on the live odometer.
	baseline := 50000.0
	addTask(t, store, db.Task{
		Title:          "Engine oil change",
		IntervalValue:  5000,
		IntervalUnit:   "kilometers",
		LastOdometer:   sql.NullFloat64{Float64: baseline, Valid: true},
		OdometerSource: db.NewNullString("car.odometer"),
	})
	// No baseline yet, so no due point can be computed.
	addTask(t, store, db.Task{
		Title:          "Replace brake pads",
		IntervalValue:  20000,
		IntervalUnit:   "miles",
		OdometerSource: db.NewNullString("bike.odometer"),
	})

	backend := staticBackend(t, map[string]float64{"car.odometer": 54000})
	svc, err := New(store, backend, config.WatchConfig{Schedule: "@hourly"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sum, err := svc.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	want := Summary{Tasks: 4, Due: 1, Unranked: 1, Problems: 0}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
}

func TestRunPassCountsProblems(t *testing.T) {
	t.Parallel()

	store, path := openTestStore(t)

	addTask(t, store, db.Task{
		Title:         "Replace HVAC filter",
		IntervalValue: 1,
		IntervalUnit:  "months",
		LastPerformed: db.NewNullString(daysAgo(120)),
	})

	// Slip a corrupt date past the write-path validation.
	raw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening raw connection: %v", err)
	}
	defer raw.Close()
	_, err = raw.Exec(
		`INSERT INTO tasks (id, title, interval_value, interval_unit, last_performed) VALUES (?, ?, ?, ?, ?)`,
		"task_bad", "Broken row", 3, "days", "not-a-date",
	)
	if err != nil {
		t.Fatalf("inserting corrupt row: %v", err)
	}

	svc, err := New(store, staticBackend(t, nil), config.WatchConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sum, err := svc.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	want := Summary{Tasks: 2, Due: 1, Unranked: 0, Problems: 1}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
}

func TestRunPassAnnouncesOnce(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	addTask(t, store, db.Task{
		Title:         "Clean gutters",
		IntervalValue: 6,
		IntervalUnit:  "months",
		LastPerformed: db.NewNullString(daysAgo(400)),
	})

	var buf strings.Builder
	logger := zerolog.New(&buf)

	svc, err := New(store, staticBackend(t, nil), config.WatchConfig{}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.RunPass(context.Background()); err != nil {
			t.Fatalf("RunPass #%d: %v", i+1, err)
		}
	}
	if got := strings.Count(buf.String(), `"task due"`); got != 1 {
		t.Errorf("announced %d times over three passes, want 1\nlog:\n%s", got, buf.String())
	}
}

func TestRunPassAnnouncesAgainAfterCompletion(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	id := addTask(t, store, db.Task{
		Title:         "Descale coffee machine",
		IntervalValue: 2,
		IntervalUnit:  "weeks",
		LastPerformed: db.NewNullString(daysAgo(30)),
	})

	var buf strings.Builder
	svc, err := New(store, staticBackend(t, nil), config.WatchConfig{}, zerolog.New(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := svc.RunPass(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := store.CompleteTask(id, nil, ""); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	sum, err := svc.RunPass(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if sum.Due != 0 {
		t.Fatalf("due after completion = %d, want 0", sum.Due)
	}

	// Push the completion back out of the window and it comes due anew.
	task, err := store.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	task.LastPerformed = db.NewNullString(daysAgo(30))
	if err := store.UpdateTask(*task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, err := svc.RunPass(context.Background()); err != nil {
		t.Fatalf("third pass: %v", err)
	}
	if got := strings.Count(buf.String(), `"task due"`); got != 2 {
		t.Errorf("announced %d times, want 2\nlog:\n%s", got, buf.String())
	}
}

func TestRunPassEmptyStore(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	svc, err := New(store, staticBackend(t, nil), config.WatchConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sum, err := svc.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if sum != (Summary{}) {
		t.Errorf("summary = %+v, want zero", sum)
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	_, err := New(store, staticBackend(t, nil), config.WatchConfig{Schedule: "every day"}, zerolog.Nop())
	if err == nil {
		t.Fatal("New accepted schedule \"every day\"")
	}
	if !strings.Contains(err.Error(), "every day") {
		t.Errorf("error %q does not name the bad schedule", err)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	addTask(t, store, db.Task{
		Title:         "Replace water filter",
		IntervalValue: 6,
		IntervalUnit:  "months",
		LastPerformed: db.NewNullString(daysAgo(200)),
	})

	svc, err := New(store, staticBackend(t, nil), config.WatchConfig{Schedule: "@hourly"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Start(ctx)
	svc.Start(ctx) // second call is a no-op
	svc.Stop()
	svc.Stop()
}

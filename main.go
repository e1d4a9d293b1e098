package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"upkeep/internal/config"
	"upkeep/internal/db"
	"upkeep/internal/due"
	"upkeep/internal/logging"
	"upkeep/internal/odometer"
	_ "upkeep/internal/odometer/homeassistant"
	"upkeep/internal/report"
	"upkeep/internal/watch"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "path to config file (default ~/.config/upkeep/config.toml)")
		initDB    = flag.Bool("init", false, "create a new task database")
		fixtures  = flag.Bool("fixtures", false, "create the database seeded with sample tasks")
		list      = flag.Bool("list", false, "print every task ordered by urgency")
		complete  = flag.String("complete", "", "mark the task with this id performed today")
		reading   = flag.String("odometer", "", "meter reading to record with -complete")
		notes     = flag.String("notes", "", "note to record with -complete")
		history   = flag.String("history", "", "print recent completions for the task with this id")
		watchMode = flag.Bool("watch", false, "keep running and re-evaluate tasks on a schedule")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level)

	if *initDB || *fixtures {
		if *fixtures {
			err = db.CreateFixturesDatabase(cfg.Database.Path)
		} else {
			err = db.Initialize(cfg.Database.Path)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Database created at", cfg.Database.Path)
		return
	}

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	manager, err := odometer.NewManager(cfg.Odometer)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	backend := manager.Backend()

	switch {
	case *complete != "":
		err = runComplete(store, backend, *complete, *reading, *notes)
	case *history != "":
		err = runHistory(store, *history)
	case *watchMode:
		err = runWatch(store, backend, cfg.Watch, logger)
	case *list:
		err = runList(store, backend)
	default:
		err = runList(store, backend)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runList prints every task ordered most urgent first, with due tasks
// marked. Tasks that cannot be resolved are appended after the listing
// rather than dropped.
func runList(store *db.DB, backend odometer.Backend) error {
	tasks, err := store.ListTasks()
	if err != nil {
		return err
	}

	inputs := make([]due.Task, 0, len(tasks))
	for _, t := range tasks {
		inputs = append(inputs, t.DueInput())
	}
	readings, failures := odometer.Snapshot(context.Background(), backend, inputs)

	entries, problems := report.Overview(tasks, readings, time.Now())
	if len(entries) == 0 && len(problems) == 0 {
		fmt.Println("No tasks yet. Run 'upkeep -fixtures' for a sample database.")
		return nil
	}

	fmt.Printf("%-2s %-34s %-20s %s\n", "", "TASK", "NEXT DUE", "REMAINING")
	for _, e := range entries {
		marker := ""
		if e.Descriptor.Due {
			marker = "!"
		}
		fmt.Printf("%-2s %-34s %-20s %s\n", marker, e.Task.Title, e.NextDueLabel(), remainingLabel(e))
	}
	for _, p := range problems {
		fmt.Printf("%-2s %-34s %v\n", "x", p.Title, p.Err)
	}
	for source, readErr := range failures {
		fmt.Printf("warning: %s: %v\n", source, readErr)
	}
	fmt.Printf("\n%d of %d tasks due\n", report.DueCount(entries), len(entries))
	return nil
}

func remainingLabel(e report.Entry) string {
	d := e.Descriptor
	if d.Rank == due.UnknownRank {
		return "-"
	}
	unit := "days"
	if d.Kind == due.KindCounter {
		unit = e.Task.IntervalUnit
	}
	switch {
	case d.Rank < 0:
		return countLabel(-d.Rank, unit) + " overdue"
	case d.Rank == 0:
		return "due now"
	default:
		return countLabel(d.Rank, unit) + " left"
	}
}

func countLabel(n float64, unit string) string {
	s := fmt.Sprintf("%.0f", n)
	if s == "1" {
		unit = strings.TrimSuffix(unit, "s")
	}
	return s + " " + unit
}

// runComplete stamps the task performed today. An explicit -odometer
// value becomes the new counter baseline; without one the task's live
// source is read, and if that source does not answer the completion is
// recorded with the baseline untouched.
func runComplete(store *db.DB, backend odometer.Backend, taskID, reading, notes string) error {
	task, err := store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no task with id %s", taskID)
		}
		return err
	}

	var value *float64
	if reading != "" {
		v, err := strconv.ParseFloat(reading, 64)
		if err != nil {
			return fmt.Errorf("bad -odometer value %q: %w", reading, err)
		}
		value = &v
	} else if task.OdometerSource.Valid && task.OdometerSource.String != "" {
		v, err := backend.CurrentValue(context.Background(), task.OdometerSource.String)
		if err == nil {
			value = &v
		} else if !errors.Is(err, odometer.ErrUnavailable) {
			return fmt.Errorf("reading %s: %w", task.OdometerSource.String, err)
		}
	}

	if err := store.CompleteTask(task.ID, value, notes); err != nil {
		return err
	}

	if value != nil {
		fmt.Printf("Completed %q at reading %g\n", task.Title, *value)
	} else {
		fmt.Printf("Completed %q\n", task.Title)
	}
	return nil
}

func runHistory(store *db.DB, taskID string) error {
	task, err := store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no task with id %s", taskID)
		}
		return err
	}

	completions, err := store.GetTaskCompletions(taskID, 20)
	if err != nil {
		return err
	}
	if len(completions) == 0 {
		fmt.Printf("%q has no recorded completions\n", task.Title)
		return nil
	}

	fmt.Printf("Recent completions for %q:\n", task.Title)
	for _, c := range completions {
		line := "  " + c.CompletedOn
		if c.Odometer.Valid {
			line += fmt.Sprintf("  at %g", c.Odometer.Float64)
		}
		if c.Notes.Valid && c.Notes.String != "" {
			line += "  " + c.Notes.String
		}
		fmt.Println(line)
	}
	return nil
}

func runWatch(store *db.DB, backend odometer.Backend, cfg config.WatchConfig, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := watch.New(store, backend, cfg, logger)
	if err != nil {
		return err
	}
	svc.Start(ctx)
	<-ctx.Done()
	svc.Stop()
	return nil
}

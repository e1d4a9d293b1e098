package watch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"upkeep/internal/config"
	"upkeep/internal/db"
	"upkeep/internal/due"
	"upkeep/internal/odometer"
	"upkeep/internal/report"
)

// passTimeout caps a single scheduled pass, odometer reads included.
const passTimeout = 2 * time.Minute

// Summary describes the outcome of one resolution pass.
type Summary struct {
	Tasks    int // rows seen in the store
	Due      int // tasks whose due point has been reached
	Unranked int // tasks listed without a computable urgency
	Problems int // tasks that failed to resolve
}

// Service periodically re-resolves every task against the clock and a
// fresh odometer snapshot, logging tasks as they come due. Due points
// are never stored; each pass recomputes them from scratch.
type Service struct {
	store    *db.DB
	backend  odometer.Backend
	log      zerolog.Logger
	schedule string

	cron        *cron.Cron
	metricsAddr string
	httpSrv     *http.Server

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	prevDue map[string]bool
}

// New builds a watch service on the given store and odometer backend.
// The schedule must be a five-field cron expression or a descriptor
// like "@hourly"; it is validated here so a bad config fails fast.
func New(store *db.DB, backend odometer.Backend, cfg config.WatchConfig, log zerolog.Logger) (*Service, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@hourly"
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s := &Service{
		store:       store,
		backend:     backend,
		log:         log,
		schedule:    schedule,
		cron:        cron.New(cron.WithParser(parser)),
		metricsAddr: cfg.MetricsAddr,
		prevDue:     make(map[string]bool),
	}
	if _, err := s.cron.AddFunc(schedule, s.scheduledPass); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the first pass immediately, then begins scheduled passes.
// The metrics listener comes up first so the initial pass is visible.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if s.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.httpSrv = &http.Server{Addr: s.metricsAddr, Handler: mux}
		go func() {
			s.log.Info().Str("addr", s.metricsAddr).Msg("metrics server listening")
			if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	s.scheduledPass()
	s.cron.Start()
	s.log.Info().
		Str("schedule", s.schedule).
		Str("backend", s.backend.Name()).
		Msg("watch started")
}

// Stop halts scheduled passes, waits for a running pass to finish and
// shuts the metrics listener down.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	cancel()
	if s.httpSrv != nil {
		shutCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = s.httpSrv.Shutdown(shutCtx)
	}
	s.log.Info().Msg("watch stopped")
}

func (s *Service) scheduledPass() {
	s.mu.Lock()
	base := s.ctx
	s.mu.Unlock()
	if base == nil || base.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(base, passTimeout)
	defer cancel()
	if _, err := s.RunPass(ctx); err != nil {
		s.log.Error().Err(err).Msg("resolution pass failed")
	}
}

// RunPass resolves every task once. It only errors when the store
// cannot be read; tasks that fail to resolve are counted and logged,
// never fatal. A task is announced when it crosses into due, then
// stays quiet until it leaves the due set and comes due again.
func (s *Service) RunPass(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	stored, err := s.store.ListTasks()
	if err != nil {
		return Summary{}, fmt.Errorf("listing tasks: %w", err)
	}

	inputs := make([]due.Task, 0, len(stored))
	for _, t := range stored {
		inputs = append(inputs, t.DueInput())
	}

	readings, failures := odometer.Snapshot(ctx, s.backend, inputs)
	for source, readErr := range failures {
		sourceFailures.WithLabelValues(source).Inc()
		s.log.Warn().Str("source", source).Err(readErr).Msg("live reading unavailable")
	}

	entries, problems := report.Overview(stored, readings, time.Now())
	for _, p := range problems {
		resolveErrors.WithLabelValues(errorReason(p.Err)).Inc()
		s.log.Error().Str("task", p.TaskID).Str("title", p.Title).Err(p.Err).Msg("task failed to resolve")
	}

	summary := Summary{Tasks: len(stored), Problems: len(problems)}
	nowDue := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Descriptor.Rank == due.UnknownRank {
			summary.Unranked++
		}
		if !e.Descriptor.Due {
			continue
		}
		summary.Due++
		nowDue[e.Task.ID] = true
		if s.prevDue[e.Task.ID] {
			continue
		}
		s.log.Info().
			Str("task", e.Task.ID).
			Str("title", e.Task.Title).
			Str("kind", string(e.Descriptor.Kind)).
			Str("next_due", e.NextDueLabel()).
			Msg("task due")
	}
	s.prevDue = nowDue

	tasksTracked.Set(float64(summary.Tasks))
	tasksDue.Set(float64(summary.Due))
	passesTotal.Inc()
	passDuration.Observe(time.Since(start).Seconds())

	s.log.Info().
		Int("tasks", summary.Tasks).
		Int("due", summary.Due).
		Int("unranked", summary.Unranked).
		Int("problems", summary.Problems).
		Dur("took", time.Since(start)).
		Msg("resolution pass complete")

	return summary, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, due.ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, due.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, due.ErrUnknownUnit):
		return "unknown_unit"
	default:
		return "other"
	}
}

package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	// passesTotal counts completed resolution passes
	passesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upkeep_passes_total",
		Help: "The total number of completed resolution passes",
	})

	// passDuration tracks how long each resolution pass takes
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "upkeep_pass_duration_seconds",
		Help:    "Duration of resolution passes in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// tasksTracked reports how many tasks the last pass saw
	tasksTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "upkeep_tasks_total",
		Help: "Number of maintenance tasks being tracked",
	})

	// tasksDue reports how many tasks the last pass found due
	tasksDue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "upkeep_tasks_due",
		Help: "Number of maintenance tasks currently due",
	})

	// resolveErrors counts tasks that could not be resolved, by reason
	resolveErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upkeep_resolve_errors_total",
		Help: "The total number of tasks that failed to resolve",
	}, []string{"reason"})

	// sourceFailures counts failed live meter reads, by source
	sourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upkeep_source_read_failures_total",
		Help: "The total number of failed live meter reads",
	}, []string{"source"})
)

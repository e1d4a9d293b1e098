package odometer

import (
	"context"

	"upkeep/internal/due"
)

// Snapshot prefetches the live reading of every counter source the
// given tasks reference, so resolution can run over plain values
// without touching the network. Each distinct source is read once.
// Sources that fail to read are returned separately; the resolver
// treats their absence as "not due" rather than an error.
func Snapshot(ctx context.Context, backend Backend, tasks []due.Task) (due.Readings, map[string]error) {
	readings := make(due.Readings)
	failures := make(map[string]error)

	for _, t := range tasks {
		if t.Unit.Family() != due.FamilyCounter || t.CounterSource == "" {
			continue
		}
		src := t.CounterSource
		if _, seen := readings[src]; seen {
			continue
		}
		if _, seen := failures[src]; seen {
			continue
		}

		v, err := backend.CurrentValue(ctx, src)
		if err != nil {
			failures[src] = err
			continue
		}
		readings[src] = v
	}

	return readings, failures
}

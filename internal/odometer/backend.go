package odometer

import (
	"context"
	"errors"

	"upkeep/internal/config"
)

// ErrUnavailable reports a source whose reading cannot be obtained: the
// source is unknown to the backend, offline, or not reporting a number.
// Resolution treats this as missing data, never as a hard failure.
var ErrUnavailable = errors.New("reading unavailable")

// Backend defines the interface that all live value backends must implement
type Backend interface {
	// Name returns the backend identifier (e.g., "homeassistant", "static")
	Name() string

	// IsEnabled checks if the backend is available and properly configured
	IsEnabled() bool

	// CurrentValue fetches the live reading for one source id
	CurrentValue(ctx context.Context, sourceID string) (float64, error)
}

// BackendFactory is a function that creates a new instance of a Backend
// from the odometer configuration
type BackendFactory func(cfg config.OdometerConfig) Backend

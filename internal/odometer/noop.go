package odometer

import (
	"context"
	"fmt"

	"upkeep/internal/config"
)

// NoopBackend answers every read with ErrUnavailable. The manager falls
// back to it when nothing else is configured, which keeps counter tasks
// listed with their baselines intact instead of failing the pass.
type NoopBackend struct{}

// NewNoopBackend returns the do-nothing backend.
func NewNoopBackend() Backend {
	return &NoopBackend{}
}

// Name returns the backend identifier
func (n *NoopBackend) Name() string {
	return "noop"
}

// IsEnabled is always false; the manager selects noop only as a last resort.
func (n *NoopBackend) IsEnabled() bool {
	return false
}

// CurrentValue reports every source as unavailable.
func (n *NoopBackend) CurrentValue(ctx context.Context, sourceID string) (float64, error) {
	return 0, fmt.Errorf("%w: no odometer backend configured", ErrUnavailable)
}

// Register the noop backend
func init() {
	Register("noop", func(cfg config.OdometerConfig) Backend { return NewNoopBackend() })
}

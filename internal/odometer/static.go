package odometer

import (
	"context"
	"fmt"

	"upkeep/internal/config"
)

// StaticBackend serves readings from a fixed table in the config file,
// for setups where the odometer is keyed in by hand
type StaticBackend struct {
	values map[string]float64
}

// NewStaticBackend creates a backend serving the given readings
func NewStaticBackend(values map[string]float64) Backend {
	return &StaticBackend{values: values}
}

// Name returns the backend identifier
func (s *StaticBackend) Name() string {
	return "static"
}

// IsEnabled returns whether any readings are configured
func (s *StaticBackend) IsEnabled() bool {
	return len(s.values) > 0
}

// CurrentValue returns the configured reading for a source
func (s *StaticBackend) CurrentValue(ctx context.Context, sourceID string) (float64, error) {
	v, ok := s.values[sourceID]
	if !ok {
		return 0, fmt.Errorf("%w: no configured value for %s", ErrUnavailable, sourceID)
	}
	return v, nil
}

// Register the static backend
func init() {
	Register("static", func(cfg config.OdometerConfig) Backend { return NewStaticBackend(cfg.Values) })
}

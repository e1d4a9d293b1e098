package odometer

import (
	"upkeep/internal/config"
)

// Manager owns the backend chosen for this run.
type Manager struct {
	backend Backend
}

// fallbackOrder is tried when the config names no backend. The first
// enabled backend wins.
var fallbackOrder = []string{"homeassistant", "static"}

// NewManager picks a backend from the configuration. A named backend
// must exist in the registry; with no name, the first enabled backend
// in fallbackOrder is used, and noop serves when nothing is enabled.
func NewManager(cfg config.OdometerConfig) (*Manager, error) {
	if cfg.Backend != "" {
		backend, err := CreateBackend(cfg.Backend, cfg)
		if err != nil {
			return nil, err
		}
		return &Manager{backend: backend}, nil
	}

	for _, name := range fallbackOrder {
		b, err := CreateBackend(name, cfg)
		if err != nil {
			continue
		}
		if b.IsEnabled() {
			return &Manager{backend: b}, nil
		}
	}

	backend, _ := CreateBackend("noop", cfg)
	return &Manager{backend: backend}, nil
}

// Backend returns the chosen backend.
func (m *Manager) Backend() Backend {
	return m.backend
}

// Name reports the chosen backend's identifier.
func (m *Manager) Name() string {
	return m.backend.Name()
}

// IsEnabled reports whether the chosen backend can serve readings.
func (m *Manager) IsEnabled() bool {
	return m.backend.IsEnabled()
}

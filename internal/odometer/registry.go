package odometer

import (
	"fmt"
	"sort"
	"sync"

	"upkeep/internal/config"
)

// Registry maps backend names to their factories. Backends register
// themselves at init time and are constructed on demand.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]BackendFactory)}
}

// Register adds a factory under the given name.
func (r *Registry) Register(name string, factory BackendFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("odometer backend %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the named backend with the given configuration.
func (r *Registry) Create(name string, cfg config.OdometerConfig) (Backend, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown odometer backend %q", name)
	}
	return factory(cfg), nil
}

// List returns the registered backend names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a backend factory to the default registry.
func Register(name string, factory BackendFactory) error {
	return defaultRegistry.Register(name, factory)
}

// CreateBackend builds a backend from the default registry.
func CreateBackend(name string, cfg config.OdometerConfig) (Backend, error) {
	return defaultRegistry.Create(name, cfg)
}

// ListBackends returns the names known to the default registry.
func ListBackends() []string {
	return defaultRegistry.List()
}

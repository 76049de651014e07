// Package registry maps process names to their constructors.
//
// A Registry is an explicit object owned by whoever composes processes; nothing
// is registered globally.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
)

// Constructor builds a process from its engine-supplied configuration map.
type Constructor func(config map[string]any) (ports.Process, error)

// Registry manages the available process constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register adds a constructor to the registry.
// If a constructor with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = fn
}

// New looks up a constructor by name and builds a process.
// Returns domain.ErrProcessNotFound if the name is not registered.
func (r *Registry) New(name string, config map[string]any) (ports.Process, error) {
	r.mu.RLock()
	fn, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProcessNotFound, name)
	}

	return fn(config)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package registry tracks the identifiers of jobs currently in flight. The
// orchestrator registers a job when it starts and polls membership on every
// progress tick; removing an identifier is how cancellation is requested.
package registry

import (
	"sync"

	"github.com/google/uuid"
)

// ID uniquely names one job instance.
type ID string

// NewID mints a fresh job identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Registry is a process-wide set of active job identifiers. Safe for
// concurrent use.
type Registry struct {
	mu  sync.Mutex
	ids map[ID]struct{}
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{ids: make(map[ID]struct{})}
}

// Add inserts the identifier into the registry.
func (r *Registry) Add(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = struct{}{}
}

// Remove deletes the identifier. Removing an identifier that is not present
// is a no-op, so a double cancel is harmless.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}

// Contains reports whether the identifier is currently registered.
func (r *Registry) Contains(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Active returns a snapshot of all registered identifiers.
func (r *Registry) Active() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]ID, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	return ids
}

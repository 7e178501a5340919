package registry

import (
	"iter"
	"sort"
	"sync"

	"github.com/specialistvlad/deploygrid/internal/component"
)

// Registry maps component names to their resolved handles. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]component.Handle
	order   []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{handles: make(map[string]component.Handle)}
}

// NewFrom returns a registry seeded with the given handles, recorded in
// name order.
func NewFrom(seed map[string]component.Handle) *Registry {
	r := New()
	names := make([]string, 0, len(seed))
	for name := range seed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.handles[name] = seed[name]
		r.order = append(r.order, name)
	}
	return r
}

// Record stores the handle for name. Recording a name twice fails with
// *DuplicateError and leaves the first handle in place.
func (r *Registry) Record(name string, h component.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.handles[name]; ok {
		return &DuplicateError{Name: name, Existing: string(existing)}
	}
	r.handles[name] = h
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the handle for name, or *NotFoundError.
func (r *Registry) Lookup(name string) (component.Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[name]
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	return h, nil
}

// Has reports whether name has been recorded.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[name]
	return ok
}

// Len returns the number of recorded handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All yields every (name, handle) pair in recording order. Each iteration
// works on a snapshot taken when it starts, so the sequence can be ranged
// over repeatedly and is unaffected by concurrent writes.
func (r *Registry) All() iter.Seq2[string, component.Handle] {
	return func(yield func(string, component.Handle) bool) {
		r.mu.RLock()
		names := make([]string, len(r.order))
		copy(names, r.order)
		handles := make([]component.Handle, len(names))
		for i, name := range names {
			handles[i] = r.handles[name]
		}
		r.mu.RUnlock()

		for i, name := range names {
			if !yield(name, handles[i]) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the recorded handles.
func (r *Registry) Snapshot() map[string]component.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]component.Handle, len(r.handles))
	for name, h := range r.handles {
		out[name] = h
	}
	return out
}

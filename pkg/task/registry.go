package task

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSealed is returned when registering into a sealed registry.
	ErrSealed = errors.New("registry is sealed")
	// ErrNilRunner is returned when registering a nil runner.
	ErrNilRunner = errors.New("nil runner")
	// ErrUnknownKind is returned for kinds outside the defined set.
	ErrUnknownKind = errors.New("unknown task kind")
)

type entry struct {
	name   string
	runner Runner
}

// Registry holds the fixed list of module runners per task kind.
// It is populated once at startup and sealed before scheduling begins.
type Registry struct {
	mu      sync.RWMutex
	sealed  bool
	entries [NumKinds][]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named runner for the given kinds.
// With no kinds the runner is registered for every kind and filters tags itself.
func (r *Registry) Register(name string, runner Runner, kinds ...Kind) error {
	if runner == nil {
		return fmt.Errorf("register %q: %w", name, ErrNilRunner)
	}
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("register %q for kind %d: %w", name, k, ErrUnknownKind)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("register %q: %w", name, ErrSealed)
	}
	for _, k := range kinds {
		r.entries[k] = append(r.entries[k], entry{name: name, runner: runner})
	}
	return nil
}

// Seal freezes the registry. Sealing twice is harmless.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Run invokes every runner registered for kind, in registration order.
func (r *Registry) Run(kind Kind) {
	if !kind.Valid() {
		return
	}
	r.mu.RLock()
	entries := r.entries[kind]
	r.mu.RUnlock()

	for _, e := range entries {
		e.runner.Run(kind)
	}
}

// Names returns the runner names registered for kind, in invocation order.
func (r *Registry) Names(kind Kind) []string {
	if !kind.Valid() {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries[kind]))
	for _, e := range r.entries[kind] {
		names = append(names, e.name)
	}
	return names
}

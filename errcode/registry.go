package errcode

import (
	"fmt"
	"maps"
	"sync"
)

// Registry guards against two modules claiming the same code.
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

var globalRegistry = NewRegistry()

// Register adds err to the global registry and returns it, so it can be used
// in package-level var blocks. Panics on conflict.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register panics if the code is already bound to a different module:key.
// Re-registering the same pair is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("errcode: registry is locked, cannot register %d", err.Code()))
	}

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("errcode: code %d already registered as %s, cannot register as %s",
			err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Lock refuses further registrations (call once startup is complete).
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// All returns a copy of the registered codes.
func (r *Registry) All() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.codes)
}

// LockGlobalRegistry locks the global registry.
func LockGlobalRegistry() {
	globalRegistry.Lock()
}

// RegisteredCodes returns every globally registered code.
func RegisteredCodes() map[int]string {
	return globalRegistry.All()
}

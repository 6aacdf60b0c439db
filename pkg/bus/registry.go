package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/axisworks/axis/pkg/models"
)

// Handler processes one message and returns the response. Returning an
// error (or a nil response) yields an error-typed reply to the sender.
// Cancellation — job cancel, dispatch timeout, shutdown — arrives through
// ctx.
type Handler func(ctx context.Context, msg *Message) (*Message, error)

// Registry maps component identifiers to handlers. Reads are lock-free on a
// copy-on-write map: dispatches vastly outnumber registrations, which happen
// at boot and on gear install/remove.
type Registry struct {
	mu       sync.Mutex // serializes writers
	handlers atomic.Pointer[map[string]Handler]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := make(map[string]Handler)
	r.handlers.Store(&empty)
	return r
}

// Register adds a handler under id. Returns ERR_CONFLICT if the id is taken.
func (r *Registry) Register(id string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.handlers.Load()
	if _, exists := current[id]; exists {
		return models.NewAgentErrorf(models.CodeConflict, "component %q already registered", id)
	}

	next := make(map[string]Handler, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[id] = h
	r.handlers.Store(&next)
	return nil
}

// Unregister removes a handler. Removing an absent id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.handlers.Load()
	if _, exists := current[id]; !exists {
		return
	}

	next := make(map[string]Handler, len(current)-1)
	for k, v := range current {
		if k != id {
			next[k] = v
		}
	}
	r.handlers.Store(&next)
}

// Handler returns the handler registered under id.
func (r *Registry) Handler(id string) (Handler, bool) {
	h, ok := (*r.handlers.Load())[id]
	return h, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := (*r.handlers.Load())[id]
	return ok
}

// Components returns the registered ids, unordered.
func (r *Registry) Components() []string {
	current := *r.handlers.Load()
	out := make([]string, 0, len(current))
	for id := range current {
		out = append(out, id)
	}
	return out
}

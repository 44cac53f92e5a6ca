package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Request is what a handler receives on invocation. Endpoint is the name the
// handler was dispatched under, which lets one handler serve several names.
type Request struct {
	Endpoint string
}

// Handler produces the JSON-serializable payload of an endpoint.
type Handler func(ctx context.Context, req Request) (any, error)

// Endpoint is a registered monitoring operation.
type Endpoint struct {
	Name        string
	Description string
	Handler     Handler
	Protected   bool
}

// Definition is an endpoint waiting to be registered under a name.
type Definition struct {
	Description string
	Handler     Handler
}

// Entry is a (name, description) pair taken from a registry snapshot.
type Entry struct {
	Name        string
	Description string
}

// Registry maps endpoint names to endpoints.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		endpoints: make(map[string]*Endpoint),
	}
}

// Register adds an unprotected endpoint.
func (r *Registry) Register(name, description string, handler Handler) error {
	return r.add(name, description, handler, false)
}

// RegisterProtected adds an endpoint that can never be unregistered.
func (r *Registry) RegisterProtected(name, description string, handler Handler) error {
	return r.add(name, description, handler, true)
}

// RegisterMany registers every definition in ascending name order, as if by
// sequential Register calls. The first failure stops the batch and is
// returned; definitions registered before it stay registered (no rollback).
func (r *Registry) RegisterMany(defs map[string]Definition) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := defs[name]
		if err := r.Register(name, def.Description, def.Handler); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) add(name, description string, handler Handler, protected bool) error {
	if name == "" || strings.Contains(name, "/") {
		return newEndpointError(name, ErrInvalidName)
	}
	if handler == nil {
		return newEndpointError(name, ErrInvalidHandler)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[name]; exists {
		return newEndpointError(name, ErrAlreadyRegistered)
	}
	r.endpoints[name] = &Endpoint{
		Name:        name,
		Description: description,
		Handler:     handler,
		Protected:   protected,
	}
	return nil
}

// Unregister removes an endpoint. Protected endpoints are left in place.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.endpoints[name]
	if !ok {
		return newEndpointError(name, ErrNoSuchEndpoint)
	}
	if ep.Protected {
		return newEndpointError(name, ErrCannotUnregister)
	}
	delete(r.endpoints, name)
	return nil
}

// Release removes the named endpoints, protected ones included. It is meant
// for owners undoing their own registrations; unknown names are ignored.
func (r *Registry) Release(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		delete(r.endpoints, name)
	}
}

// Lookup returns a copy of the named endpoint and whether it exists.
func (r *Registry) Lookup(name string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[name]
	if !ok {
		return Endpoint{}, false
	}
	return *ep, true
}

// Entries returns a snapshot of all registered endpoints sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.endpoints))
	for name, ep := range r.endpoints {
		entries = append(entries, Entry{Name: name, Description: ep.Description})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Descriptions returns a snapshot mapping every endpoint name to its description.
func (r *Registry) Descriptions() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.endpoints))
	for name, ep := range r.endpoints {
		out[name] = ep.Description
	}
	return out
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

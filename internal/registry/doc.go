// Package registry holds the named monitoring endpoints of a service.
//
// A Registry maps an endpoint name to its description, its handler and a
// protected flag. Names are unique: registering a name twice fails with
// ErrAlreadyRegistered and leaves the first registration untouched. Protected
// endpoints (the built-in defaults installed by the monitor) can never be
// unregistered.
//
// The registry is an explicit value. Monitors that must share endpoints are
// handed the same *Registry; there is no package-level state.
//
// All methods are safe for concurrent use. Lookups taken by the request path
// hold a read lock, so endpoints may be registered or removed while the
// listener is serving.
package registry

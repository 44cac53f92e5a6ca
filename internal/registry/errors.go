package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRegistered is returned when registering a name that is already present.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNoSuchEndpoint is returned when unregistering a name that is not present.
	ErrNoSuchEndpoint = errors.New("no such registered endpoint")
	// ErrCannotUnregister is returned when unregistering a protected endpoint.
	ErrCannotUnregister = errors.New("cannot unregister")
	// ErrInvalidName is returned for empty names or names spanning more than one path segment.
	ErrInvalidName = errors.New("invalid endpoint name")
	// ErrInvalidHandler is returned when registering a nil handler.
	ErrInvalidHandler = errors.New("invalid endpoint handler")
)

// EndpointError reports a failed registry mutation together with the
// offending endpoint name. Use errors.Is against the Err* sentinels to
// classify it.
type EndpointError struct {
	Name string
	Err  error
}

func (e *EndpointError) Error() string {
	switch e.Err {
	case ErrAlreadyRegistered:
		return fmt.Sprintf("endpoint %s is already registered", e.Name)
	case ErrNoSuchEndpoint:
		return fmt.Sprintf("no such registered endpoint %s", e.Name)
	case ErrCannotUnregister:
		return fmt.Sprintf("cannot unregister endpoint %s", e.Name)
	default:
		return fmt.Sprintf("endpoint %q: %v", e.Name, e.Err)
	}
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

func newEndpointError(name string, err error) error {
	return &EndpointError{Name: name, Err: err}
}

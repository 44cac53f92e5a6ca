package config

import (
	"fmt"
	"time"
)

// Check kinds understood by the checks package.
const (
	CheckHTTP     = "http"
	CheckSocketIO = "socketio"
)

// DefaultCheckTimeout bounds a check that does not set its own timeout.
const DefaultCheckTimeout = 5 * time.Second

// Model is the unified representation of a monitor configuration.
type Model struct {
	Service   *Service
	Endpoints []*StaticEndpoint
	Checks    []*Check
}

// Service describes the monitored service and its listener.
type Service struct {
	Name    string
	Host    string
	Port    int
	Metrics bool
}

// StaticEndpoint is an endpoint whose payload is fixed at load time.
type StaticEndpoint struct {
	Name        string
	Description string
	Payload     any
}

// Check is an endpoint that probes an upstream dependency on every call.
type Check struct {
	Name         string
	Description  string
	Kind         string
	URL          string
	Timeout      time.Duration
	ExpectStatus int
	Namespace    string
}

// Validate checks names for duplicates across endpoints and checks, and
// check kinds for support.
func (m *Model) Validate() error {
	seen := make(map[string]string)
	claim := func(name, kind string) error {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("duplicate name %q: %s clashes with %s", name, kind, prev)
		}
		seen[name] = kind
		return nil
	}

	for _, ep := range m.Endpoints {
		if err := claim(ep.Name, "endpoint"); err != nil {
			return err
		}
	}
	for _, c := range m.Checks {
		if err := claim(c.Name, "check"); err != nil {
			return err
		}
		switch c.Kind {
		case CheckHTTP, CheckSocketIO:
		default:
			return fmt.Errorf("check %q: unsupported kind %q", c.Name, c.Kind)
		}
		if c.URL == "" {
			return fmt.Errorf("check %q: url is required", c.Name)
		}
	}
	return nil
}

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/vk/servicemon/internal/registry"
	"github.com/vk/servicemon/internal/report"
)

// State is the lifecycle state of a Monitor.
type State int

const (
	StateInitializing State = iota
	StateServing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateServing:
		return "serving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Monitor is a running monitoring session for one service.
type Monitor struct {
	name      string
	startTime string
	registry  *registry.Registry
	stats     *Statistics
	logger    *slog.Logger
	metrics   *metrics

	mu       sync.Mutex
	state    State
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// New binds the listen address, registers the default endpoints and the
// configured ones, then serves in the background. Listen errors and
// registration errors (for instance a configured endpoint reusing a default
// name) are returned and leave nothing running; endpoints this call already
// added are removed from the registry again.
func New(ctx context.Context, cfg Config) (*Monitor, error) {
	cfg = cfg.withDefaults()

	m := &Monitor{
		name:     cfg.serviceName(),
		registry: cfg.Registry,
		stats:    cfg.statistics(),
		logger:   cfg.Logger.With("service", cfg.serviceName()),
		metrics:  newMetrics(),
		state:    StateInitializing,
		done:     make(chan struct{}),
	}

	addr := cfg.Addr
	if addr == "" {
		addr = net.JoinHostPort(cfg.host(), strconv.Itoa(cfg.port()))
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	added, err := m.registerAll(cfg)
	if err != nil {
		m.registry.Release(added...)
		_ = listener.Close()
		m.logger.Debug("Monitor construction failed, released endpoints.", "released", added)
		return nil, err
	}
	m.logger.Debug("Monitor endpoints registered.", "count", m.registry.Len())

	m.startTime = report.Timestamp(report.TimeNow())
	m.serve(listener, cfg)
	return m, nil
}

// registerAll adds every endpoint the monitor owns and returns the names it
// added, also on failure.
func (m *Monitor) registerAll(cfg Config) ([]string, error) {
	m.logger.Debug("Registering default monitor endpoints.")
	added, err := m.registerDefaults()
	if err != nil {
		return added, fmt.Errorf("failed to register default endpoints: %w", err)
	}

	if err := m.registry.RegisterMany(cfg.Endpoints); err != nil {
		return append(added, registeredBefore(cfg.Endpoints, err)...), fmt.Errorf("failed to register endpoints: %w", err)
	}
	for name := range cfg.Endpoints {
		added = append(added, name)
	}

	if m.stats != nil {
		if err := m.registry.RegisterProtected("status", "statistics report", m.handleStatus); err != nil {
			return added, fmt.Errorf("failed to register status endpoint: %w", err)
		}
		added = append(added, "status")
	}
	if cfg.MetricsEndpoint {
		if err := m.registry.Register("metrics", "dispatch counters", m.handleMetrics); err != nil {
			return added, fmt.Errorf("failed to register metrics endpoint: %w", err)
		}
		added = append(added, "metrics")
	}
	return added, nil
}

// registeredBefore returns the names RegisterMany added before failing on
// the endpoint named in err. RegisterMany works in ascending name order.
func registeredBefore(defs map[string]registry.Definition, err error) []string {
	var epErr *registry.EndpointError
	if !errors.As(err, &epErr) {
		return nil
	}
	var names []string
	for name := range defs {
		if name < epErr.Name {
			names = append(names, name)
		}
	}
	return names
}

func (m *Monitor) serve(listener net.Listener, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(m.logger.Handler(), slog.LevelError),
	}
	m.state = StateServing

	go func() {
		defer close(m.done)
		m.logger.Info("Monitor listener started", "address", listener.Addr().String())
		if err := m.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Monitor listener failed unexpectedly", "error", err)
		}
	}()
}

// Close gracefully stops the listener. It is safe to call more than once.
func (m *Monitor) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateServing {
		m.mu.Unlock()
		return nil
	}
	m.state = StateClosed
	server := m.server
	m.mu.Unlock()

	m.logger.Info("Shutting down monitor listener...")
	if err := server.Shutdown(ctx); err != nil {
		m.logger.Error("Monitor listener shutdown failed", "error", err)
		return err
	}
	<-m.done
	m.logger.Debug("Monitor listener shut down gracefully.")
	return nil
}

// Addr returns the address the listener is bound to.
func (m *Monitor) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ServiceName returns the name reported in envelopes.
func (m *Monitor) ServiceName() string { return m.name }

// StartTime returns the formatted construction time reported by "state".
func (m *Monitor) StartTime() string { return m.startTime }

// Registry returns the endpoint registry, so embedding code can add or
// remove its own endpoints at runtime.
func (m *Monitor) Registry() *registry.Registry { return m.registry }


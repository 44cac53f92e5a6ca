package monitor

import (
	"log/slog"
	"time"

	"github.com/vk/servicemon/internal/registry"
)

const (
	// DefaultServiceName is reported when neither the config nor the
	// embedded service names the service.
	DefaultServiceName = "servicemon"
	// DefaultHost is the interface the listener binds when none is configured.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the listener port when none is configured.
	DefaultPort = 5000
)

// Config configures a Monitor. Zero values fall back to the embedded
// service's capabilities and then to package defaults.
type Config struct {
	// ServiceName overrides the name reported in every envelope.
	ServiceName string
	// Host and Port form the listen address. Port 0 means "not set".
	Host string
	Port int
	// Addr, when set, is used verbatim as the listen address ("127.0.0.1:0"
	// picks a free port).
	Addr string

	// Endpoints are registered after the defaults, in name order.
	Endpoints map[string]registry.Definition

	// Registry is the endpoint registry to populate. A fresh one is created
	// when nil. Passing the same registry to a second monitor fails because
	// the default endpoints are already taken.
	Registry *registry.Registry

	// Service is the embedding service. It may implement ServiceNamer,
	// PortProvider and StatisticsProvider.
	Service any

	// MetricsEndpoint registers the unprotected "metrics" endpoint.
	MetricsEndpoint bool

	Logger *slog.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ServiceNamer is implemented by services that name themselves.
type ServiceNamer interface {
	ServiceName() string
}

// PortProvider is implemented by services that pick their monitor port.
type PortProvider interface {
	MonitorPort() int
}

// StatisticsProvider is implemented by services that keep runtime
// statistics. Its presence adds the protected "status" endpoint.
type StatisticsProvider interface {
	Statistics() *Statistics
}

func (c *Config) serviceName() string {
	if c.ServiceName != "" {
		return c.ServiceName
	}
	if namer, ok := c.Service.(ServiceNamer); ok && namer.ServiceName() != "" {
		return namer.ServiceName()
	}
	return DefaultServiceName
}

func (c *Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	if pp, ok := c.Service.(PortProvider); ok && pp.MonitorPort() > 0 {
		return pp.MonitorPort()
	}
	return DefaultPort
}

func (c *Config) host() string {
	if c.Host != "" {
		return c.Host
	}
	return DefaultHost
}

func (c *Config) statistics() *Statistics {
	sp, ok := c.Service.(StatisticsProvider)
	if !ok {
		return nil
	}
	return sp.Statistics()
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = 5 * time.Second
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = 30 * time.Second
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = 60 * time.Second
	}
	if out.Registry == nil {
		out.Registry = registry.New()
	}
	return out
}

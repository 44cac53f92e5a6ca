package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/servicemon/internal/checks"
	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
	"github.com/vk/servicemon/internal/monitor"
	"github.com/vk/servicemon/internal/registry"
)

// shutdownTimeout bounds the graceful close of the monitor listener.
const shutdownTimeout = 5 * time.Second

// Run starts the monitor and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	mon, err := a.Start(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("🩺 Service monitor running", "service", mon.ServiceName(), "address", mon.Addr(), "start_time", mon.StartTime())

	<-ctx.Done()
	a.logger.Debug("Run context cancelled, shutting down.", "reason", context.Cause(ctx))

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := mon.Close(closeCtx); err != nil {
		return fmt.Errorf("failed to close monitor: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Start builds every configured endpoint and starts the monitor listener.
// The caller owns the returned monitor and must Close it.
func (a *App) Start(ctx context.Context) (*monitor.Monitor, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	endpoints, err := a.endpoints(ctx)
	if err != nil {
		return nil, err
	}

	metrics := a.config.Metrics
	host := a.config.Host
	if svc := a.model.Service; svc != nil {
		metrics = metrics || svc.Metrics
		if host == "" {
			host = svc.Host
		}
	}

	mon, err := monitor.New(ctx, monitor.Config{
		ServiceName:     a.config.ServiceName,
		Host:            host,
		Port:            a.config.Port,
		Addr:            a.config.Addr,
		Endpoints:       endpoints,
		Service:         a,
		MetricsEndpoint: metrics,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start monitor: %w", err)
	}
	return mon, nil
}

func (a *App) endpoints(ctx context.Context) (map[string]registry.Definition, error) {
	logger := ctxlog.FromContext(ctx)

	out, err := checks.Endpoints(a.model.Checks, checks.Options{
		Observer:    a.observeCheck,
		Concurrency: a.config.CheckConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build checks: %w", err)
	}
	logger.Debug("Check endpoints built.", "count", len(a.model.Checks))

	for _, ep := range a.model.Endpoints {
		if _, exists := out[ep.Name]; exists {
			return nil, fmt.Errorf("endpoint %q clashes with a check endpoint", ep.Name)
		}
		out[ep.Name] = registry.Definition{
			Description: ep.Description,
			Handler:     staticHandler(ep),
		}
	}
	logger.Debug("Static endpoints built.", "count", len(a.model.Endpoints))
	return out, nil
}

func staticHandler(ep *config.StaticEndpoint) registry.Handler {
	return func(ctx context.Context, req registry.Request) (any, error) {
		return ep.Payload, nil
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/servicemon/internal/checks"
	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
	"github.com/vk/servicemon/internal/monitor"
)

// Statistic keys reported by the status endpoint.
const (
	StatCheckRuns     = "check_runs"
	StatCheckFailures = "check_failures"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
	stats  *monitor.Statistics
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model := &config.Model{}
	if len(cfg.ConfigPaths) > 0 {
		loaded, err := loader.Load(ctx, cfg.ConfigPaths...)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		model = loaded
		logger.Debug("Configuration loaded and translated into unified model.",
			"endpoints", len(model.Endpoints), "checks", len(model.Checks))
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		model:  model,
		stats: monitor.NewStatistics(map[string]any{
			StatCheckRuns:     int64(0),
			StatCheckFailures: int64(0),
		}),
	}
}

// ServiceName reports the service name from the loaded configuration.
func (a *App) ServiceName() string {
	if a.model.Service == nil {
		return ""
	}
	return a.model.Service.Name
}

// MonitorPort reports the port from the loaded configuration.
func (a *App) MonitorPort() int {
	if a.model.Service == nil {
		return 0
	}
	return a.model.Service.Port
}

// Statistics exposes the check counters through the status endpoint.
func (a *App) Statistics() *monitor.Statistics {
	return a.stats
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

func (a *App) observeCheck(name string, res checks.Result) {
	a.stats.Add(StatCheckRuns, 1)
	if !res.Healthy {
		a.stats.Add(StatCheckFailures, 1)
	}
}

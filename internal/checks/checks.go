package checks

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
	"github.com/vk/servicemon/internal/registry"
	"golang.org/x/sync/errgroup"
)

// AggregateName is the endpoint that runs every configured check.
const AggregateName = "checks"

// Result is the payload of a check endpoint.
type Result struct {
	Healthy    bool   `json:"healthy"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	LatencyMs  int64  `json:"latency_ms"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Func runs one probe.
type Func func(ctx context.Context) Result

// Observer is told about every finished probe.
type Observer func(name string, res Result)

// Options tune how check endpoints are built.
type Options struct {
	// Client is used by HTTP checks; a client without timeout is created
	// when nil since each check carries its own deadline.
	Client *http.Client
	// Observer, when set, receives every result.
	Observer Observer
	// Concurrency limits the aggregate endpoint; 0 means unlimited.
	Concurrency int
}

// Build returns the probe for a configured check.
func Build(check *config.Check, client *http.Client) (Func, error) {
	switch check.Kind {
	case config.CheckHTTP:
		return HTTP(check, client), nil
	case config.CheckSocketIO:
		return SocketIO(check), nil
	default:
		return nil, fmt.Errorf("check %q: unsupported kind %q", check.Name, check.Kind)
	}
}

// Endpoints builds one endpoint per check plus the aggregate endpoint.
// It returns no definitions when there are no checks.
func Endpoints(defs []*config.Check, opts Options) (map[string]registry.Definition, error) {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}

	out := make(map[string]registry.Definition, len(defs)+1)
	probes := make(map[string]Func, len(defs))
	for _, def := range defs {
		if def.Name == AggregateName {
			return nil, fmt.Errorf("check name %q is reserved", AggregateName)
		}
		fn, err := Build(def, opts.Client)
		if err != nil {
			return nil, err
		}
		fn = withTimeout(fn, def.Timeout)
		probes[def.Name] = fn

		description := def.Description
		if description == "" {
			description = fmt.Sprintf("%s check of %s", def.Kind, def.URL)
		}
		out[def.Name] = registry.Definition{
			Description: description,
			Handler:     Handler(def.Name, fn, opts.Observer),
		}
	}

	if len(probes) > 0 {
		out[AggregateName] = registry.Definition{
			Description: "run all dependency checks",
			Handler:     Aggregate(probes, opts.Concurrency, opts.Observer),
		}
	}
	return out, nil
}

// Handler exposes a single probe as an endpoint handler.
func Handler(name string, fn Func, observe Observer) registry.Handler {
	return func(ctx context.Context, req registry.Request) (any, error) {
		ctx = ctxlog.With(ctx, "check", name)
		res := fn(ctx)
		logResult(ctx, res)
		if observe != nil {
			observe(name, res)
		}
		return res, nil
	}
}

// AggregateReport is the payload of the aggregate endpoint.
type AggregateReport struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]Result `json:"checks"`
}

// Aggregate runs every probe concurrently, at most limit at a time when
// limit > 0, and reports healthy only when all of them are.
func Aggregate(probes map[string]Func, limit int, observe Observer) registry.Handler {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(ctx context.Context, req registry.Request) (any, error) {
		results := make([]Result, len(names))

		// Probes report failures in their Result, never as errors.
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, name := range names {
			g.Go(func() error {
				results[i] = probes[name](ctx)
				return nil
			})
		}
		_ = g.Wait()

		out := AggregateReport{Healthy: true, Checks: make(map[string]Result, len(names))}
		for i, name := range names {
			res := results[i]
			logResult(ctxlog.With(ctx, "check", name), res)
			if observe != nil {
				observe(name, res)
			}
			out.Checks[name] = res
			out.Healthy = out.Healthy && res.Healthy
		}
		return out, nil
	}
}

func withTimeout(fn Func, timeout time.Duration) Func {
	if timeout <= 0 {
		timeout = config.DefaultCheckTimeout
	}
	return func(ctx context.Context) Result {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(ctx)
	}
}

func logResult(ctx context.Context, res Result) {
	logger := ctxlog.FromContext(ctx)
	if res.Healthy {
		logger.Debug("Check passed.", "latency_ms", res.LatencyMs)
		return
	}
	logger.Warn("Check failed", "target", res.Target, "error", res.Error)
}

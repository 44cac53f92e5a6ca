package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
)

// translateService converts the HCL service schema into the agnostic model.
func translateService(s *serviceBlock) *config.Service {
	return &config.Service{
		Name:    s.Name,
		Host:    s.Host,
		Port:    s.Port,
		Metrics: s.Metrics,
	}
}

// translateEndpoint evaluates the payload expression once, at load time.
func translateEndpoint(ctx context.Context, e *endpointBlock, evalCtx *hcl.EvalContext) (*config.StaticEndpoint, error) {
	def := &config.StaticEndpoint{
		Name:        e.Name,
		Description: e.Description,
	}
	if !isExprDefined(e.Payload) {
		ctxlog.FromContext(ctx).Warn("Endpoint has no payload, it will report null.", "endpoint", e.Name)
		return def, nil
	}

	val, diags := e.Payload.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("endpoint %q: failed to evaluate payload: %w", e.Name, diags)
	}
	payload, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", e.Name, err)
	}
	def.Payload = payload
	return def, nil
}

// translateCheck parses the timeout and fills defaults.
func translateCheck(c *checkBlock) (*config.Check, error) {
	timeout := config.DefaultCheckTimeout
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("check %q: invalid timeout %q: %w", c.Name, c.Timeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("check %q: timeout must be positive, got %s", c.Name, c.Timeout)
		}
		timeout = d
	}

	return &config.Check{
		Name:         c.Name,
		Description:  c.Description,
		Kind:         c.Kind,
		URL:          c.URL,
		Timeout:      timeout,
		ExpectStatus: c.ExpectStatus,
		Namespace:    c.Namespace,
	}, nil
}

// isExprDefined reports whether an optional attribute was actually written.
// The decoder fills omitted optional expressions with zero-width placeholders,
// so a nil check alone is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

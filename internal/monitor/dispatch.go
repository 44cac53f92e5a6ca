package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/servicemon/internal/registry"
	"github.com/vk/servicemon/internal/report"
)

// NoSuchEndpoint is the payload value reported for unknown endpoint names.
const NoSuchEndpoint = "No such endpoint"

// Result is the outcome of a dispatch: an HTTP status and the envelope to send.
type Result struct {
	Status   int
	Envelope report.Envelope
}

// Dispatch invokes the endpoint registered under name and wraps its payload.
// It never fails: unknown names and failing handlers are reported in the
// payload.
func (m *Monitor) Dispatch(ctx context.Context, name string) Result {
	start := time.Now()

	ep, ok := m.registry.Lookup(name)
	if !ok {
		m.logger.Debug("Unknown endpoint requested.", "endpoint", name)
		m.metrics.observe(unknownEndpointLabel, outcomeUnknown, time.Since(start))
		return Result{
			Status:   http.StatusNotFound,
			Envelope: report.New(m.name, map[string]string{name: NoSuchEndpoint}),
		}
	}

	payload, err := invoke(ctx, ep)
	if err != nil {
		m.logger.Error("Endpoint handler failed", "endpoint", name, "error", err)
		m.metrics.observe(name, outcomeError, time.Since(start))
		return Result{
			Status:   http.StatusInternalServerError,
			Envelope: report.New(m.name, errorPayload(name, err)),
		}
	}

	m.metrics.observe(name, outcomeOK, time.Since(start))
	return Result{
		Status:   http.StatusOK,
		Envelope: report.New(m.name, payload),
	}
}

// invoke runs the handler, turning a panic into an error.
func invoke(ctx context.Context, ep registry.Endpoint) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return ep.Handler(ctx, registry.Request{Endpoint: ep.Name})
}

func errorPayload(name string, err error) map[string]string {
	return map[string]string{
		"endpoint": name,
		"error":    err.Error(),
	}
}

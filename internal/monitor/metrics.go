package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/servicemon/internal/registry"
)

const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeUnknown = "unknown"

	// Unknown names share one label value to keep cardinality bounded.
	unknownEndpointLabel = "_unknown"

	dispatchTotalName = "servicemon_dispatch_total"
)

// metrics holds the per-monitor Prometheus collectors. Each monitor owns its
// registry so several monitors in one process never collide.
type metrics struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: dispatchTotalName,
			Help: "Endpoint dispatches by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicemon_dispatch_duration_seconds",
			Help:    "Time spent in endpoint handlers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(m.total, m.duration)
	return m
}

func (m *metrics) observe(endpoint, outcome string, elapsed time.Duration) {
	m.total.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Gatherer exposes the monitor's dispatch metrics for scraping by an
// embedding service's own Prometheus handler.
func (m *Monitor) Gatherer() prometheus.Gatherer {
	return m.metrics.registry
}

// handleMetrics reports dispatch counts as endpoint -> outcome -> count.
func (m *Monitor) handleMetrics(ctx context.Context, req registry.Request) (any, error) {
	families, err := m.metrics.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	counts := make(map[string]map[string]float64)
	for _, mf := range families {
		if mf.GetName() != dispatchTotalName {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var endpoint, outcome string
			for _, pair := range metric.GetLabel() {
				switch pair.GetName() {
				case "endpoint":
					endpoint = pair.GetValue()
				case "outcome":
					outcome = pair.GetValue()
				}
			}
			if counts[endpoint] == nil {
				counts[endpoint] = make(map[string]float64)
			}
			counts[endpoint][outcome] = metric.GetCounter().GetValue()
		}
	}
	return counts, nil
}

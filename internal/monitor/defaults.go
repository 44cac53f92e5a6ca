package monitor

import (
	"context"

	"github.com/vk/servicemon/internal/registry"
)

const showAllDescription = "show registered commands"

func (m *Monitor) registerDefaults() ([]string, error) {
	defaults := []struct {
		name        string
		description string
		handler     registry.Handler
	}{
		{"state", "service state", m.handleState},
		{"showall", showAllDescription, m.handleShowAll},
		{"help", showAllDescription, m.handleShowAll},
	}
	added := make([]string, 0, len(defaults))
	for _, d := range defaults {
		if err := m.registry.RegisterProtected(d.name, d.description, d.handler); err != nil {
			return added, err
		}
		added = append(added, d.name)
	}
	return added, nil
}

// handleState reports liveness and the construction time.
func (m *Monitor) handleState(ctx context.Context, req registry.Request) (any, error) {
	return map[string]string{
		"status":     "up",
		"start_time": m.startTime,
	}, nil
}

// handleShowAll lists every endpoint registered at the time of the call.
func (m *Monitor) handleShowAll(ctx context.Context, req registry.Request) (any, error) {
	return m.registry.Descriptions(), nil
}

// handleStatus reports the service statistics and zeroes them.
func (m *Monitor) handleStatus(ctx context.Context, req registry.Request) (any, error) {
	return m.stats.Drain(), nil
}

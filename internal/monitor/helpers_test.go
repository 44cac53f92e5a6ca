package monitor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/servicemon/internal/report"
)

// fixedTime pins the report clock for the duration of a test.
func fixedTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := report.TimeNow
	report.TimeNow = func() time.Time { return at }
	t.Cleanup(func() { report.TimeNow = prev })
}

// startMonitor builds a monitor on a free local port and closes it when the
// test ends.
func startMonitor(t *testing.T, cfg Config) *Monitor {
	t.Helper()
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Close(ctx)
	})
	return m
}

// get performs GET /<path> against the monitor and decodes the envelope.
func get(t *testing.T, m *Monitor, path string) (*http.Response, report.Envelope) {
	t.Helper()
	resp, err := http.Get("http://" + m.Addr() + "/" + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env report.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

// statsService is an embedding service exposing statistics.
type statsService struct {
	stats *Statistics
}

func (s *statsService) Statistics() *Statistics { return s.stats }

// namedService names itself and picks its port.
type namedService struct{}

func (namedService) ServiceName() string { return "orders" }
func (namedService) MonitorPort() int    { return 6123 }

package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vk/servicemon/internal/report"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// Handler returns the monitor's HTTP handler with request logging, for
// mounting on an existing server.
func (m *Monitor) Handler() http.Handler {
	return withRequestLogging(m, m.logger)
}

// ServeHTTP routes GET /<name> to Dispatch. Paths with more than one
// segment never match a registered name and are reported as unknown.
// HEAD only reports whether the endpoint exists; handlers are not run since
// some of them, like status, consume the data they report.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeEnvelope(w, m.logger, http.StatusMethodNotAllowed, report.New(m.name, map[string]string{
			"error": "method not allowed",
		}))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if r.Method == http.MethodHead {
		status := http.StatusOK
		if _, ok := m.registry.Lookup(name); !ok {
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(status)
		return
	}

	res := m.Dispatch(r.Context(), name)
	writeEnvelope(w, m.logger, res.Status, res.Envelope)
}

// writeEnvelope serializes env before touching the response so a payload
// that cannot be encoded still yields a well-formed error envelope.
func writeEnvelope(w http.ResponseWriter, logger *slog.Logger, status int, env report.Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to encode report", "error", err)
		status = http.StatusInternalServerError
		body, _ = report.Encode(env.Service, map[string]string{
			"error": "failed to encode payload: " + err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogging tags every request with an id and logs method, path,
// status and duration.
func withRequestLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("Monitor request served.",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

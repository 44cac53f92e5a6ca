package checks

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
	"github.com/vk/servicemon/internal/registry"
	sioserver "github.com/zishang520/socket.io/v2/socket"
)

// closedURL returns a URL on a local port nothing listens on.
func closedURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP(t *testing.T) {
	ok := statusServer(t, http.StatusOK)
	noContent := statusServer(t, http.StatusNoContent)
	failing := statusServer(t, http.StatusServiceUnavailable)

	tests := []struct {
		name        string
		check       config.Check
		wantHealthy bool
		wantStatus  int
		wantErr     string
	}{
		{name: "2xx healthy", check: config.Check{URL: ok.URL}, wantHealthy: true, wantStatus: 200},
		{name: "expected status", check: config.Check{URL: noContent.URL, ExpectStatus: 204}, wantHealthy: true, wantStatus: 204},
		{name: "unexpected status", check: config.Check{URL: ok.URL, ExpectStatus: 204}, wantStatus: 200, wantErr: "unexpected status 200, want 204"},
		{name: "5xx unhealthy", check: config.Check{URL: failing.URL}, wantStatus: 503, wantErr: "unexpected status 503"},
		{name: "connection refused", check: config.Check{URL: closedURL(t)}, wantErr: "failed to execute request"},
		{name: "bad url", check: config.Check{URL: "://nope"}, wantErr: "failed to create request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := tt.check
			res := HTTP(&check, http.DefaultClient)(context.Background())

			assert.Equal(t, tt.wantHealthy, res.Healthy)
			assert.Equal(t, config.CheckHTTP, res.Kind)
			assert.Equal(t, check.URL, res.Target)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantErr == "" {
				assert.Empty(t, res.Error)
			} else {
				assert.Contains(t, res.Error, tt.wantErr)
			}
		})
	}
}

func TestHTTP_RespectsTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)
	t.Cleanup(func() { close(release) })

	check := &config.Check{Name: "slow", Kind: config.CheckHTTP, URL: slow.URL}
	fn := withTimeout(HTTP(check, http.DefaultClient), 50*time.Millisecond)

	res := fn(context.Background())
	assert.False(t, res.Healthy)
	assert.Contains(t, res.Error, "context deadline exceeded")
}

// socketIOServer serves Socket.IO on a local listener with the default and
// the /events namespaces.
func socketIOServer(t *testing.T) string {
	t.Helper()
	io := sioserver.NewServer(nil, nil)
	io.Of("/events", nil)

	handler := io.ServeHandler(nil)
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", handler)
	mux.Handle("/socket.io", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	return srv.URL
}

func TestSocketIO_Connects(t *testing.T) {
	url := socketIOServer(t)

	for _, namespace := range []string{"", "/events"} {
		t.Run("namespace "+namespace, func(t *testing.T) {
			check := &config.Check{Name: "events", Kind: config.CheckSocketIO, URL: url, Namespace: namespace}
			res := withTimeout(SocketIO(check), 5*time.Second)(context.Background())

			assert.True(t, res.Healthy, "error: %s", res.Error)
			assert.Equal(t, config.CheckSocketIO, res.Kind)
			assert.Equal(t, url, res.Target)
			assert.Empty(t, res.Error)
		})
	}
}

func TestSocketIO_UnknownNamespace(t *testing.T) {
	url := socketIOServer(t)
	check := &config.Check{Name: "events", Kind: config.CheckSocketIO, URL: url, Namespace: "/missing"}

	res := withTimeout(SocketIO(check), 2*time.Second)(context.Background())

	assert.False(t, res.Healthy)
	assert.NotEmpty(t, res.Error)
}

func TestSocketIO_Unreachable(t *testing.T) {
	check := &config.Check{Name: "events", Kind: config.CheckSocketIO, URL: closedURL(t)}
	fn := withTimeout(SocketIO(check), 500*time.Millisecond)

	res := fn(context.Background())
	assert.False(t, res.Healthy)
	assert.Equal(t, config.CheckSocketIO, res.Kind)
	assert.NotEmpty(t, res.Error)
}

func TestSocketIO_InvalidURL(t *testing.T) {
	check := &config.Check{Name: "events", Kind: config.CheckSocketIO, URL: "localhost:3000"}
	res := SocketIO(check)(context.Background())
	assert.False(t, res.Healthy)
	assert.Contains(t, res.Error, "must include scheme and host")
}

func TestBuild_UnsupportedKind(t *testing.T) {
	_, err := Build(&config.Check{Name: "db", Kind: "postgres"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported kind "postgres"`)
}

func TestEndpoints(t *testing.T) {
	up := statusServer(t, http.StatusOK)
	down := closedURL(t)

	var mu sync.Mutex
	observed := map[string]int{}
	observer := func(name string, res Result) {
		mu.Lock()
		defer mu.Unlock()
		observed[name]++
	}

	defs, err := Endpoints([]*config.Check{
		{Name: "api", Description: "upstream API", Kind: config.CheckHTTP, URL: up.URL, Timeout: time.Second},
		{Name: "billing", Kind: config.CheckHTTP, URL: down, Timeout: time.Second},
	}, Options{Observer: observer, Concurrency: 1})
	require.NoError(t, err)

	require.Len(t, defs, 3)
	assert.Equal(t, "upstream API", defs["api"].Description)
	assert.Equal(t, "http check of "+down, defs["billing"].Description)
	assert.Equal(t, "run all dependency checks", defs[AggregateName].Description)

	ctx := context.Background()
	payload, err := defs["api"].Handler(ctx, registry.Request{Endpoint: "api"})
	require.NoError(t, err)
	assert.True(t, payload.(Result).Healthy)

	payload, err = defs[AggregateName].Handler(ctx, registry.Request{Endpoint: AggregateName})
	require.NoError(t, err)
	agg := payload.(AggregateReport)
	assert.False(t, agg.Healthy)
	assert.True(t, agg.Checks["api"].Healthy)
	assert.False(t, agg.Checks["billing"].Healthy)

	assert.Equal(t, map[string]int{"api": 2, "billing": 1}, observed)
}

func TestEndpoints_NoChecks(t *testing.T) {
	defs, err := Endpoints(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestAggregate_AllHealthy(t *testing.T) {
	probe := func(ctx context.Context) Result { return Result{Healthy: true, Kind: "fake"} }
	h := Aggregate(map[string]Func{"a": probe, "b": probe}, 0, nil)

	payload, err := h(context.Background(), registry.Request{Endpoint: AggregateName})
	require.NoError(t, err)
	agg := payload.(AggregateReport)
	assert.True(t, agg.Healthy)
	assert.Len(t, agg.Checks, 2)
}

func TestEndpoints_ReservedName(t *testing.T) {
	_, err := Endpoints([]*config.Check{
		{Name: AggregateName, Kind: config.CheckHTTP, URL: "http://localhost"},
	}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestHandler_LogsWithCheckName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	probe := func(ctx context.Context) Result {
		ctxlog.FromContext(ctx).Info("probing")
		return Result{Kind: "fake", Target: "db:5432", Error: "refused"}
	}

	_, err := Handler("db", probe, nil)(ctx, registry.Request{Endpoint: "db"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=probing check=db")
	assert.Contains(t, buf.String(), `msg="Check failed" check=db target=db:5432 error=refused`)
}

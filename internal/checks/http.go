package checks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/servicemon/internal/config"
)

// maxDrain bounds how much of a response body is read before closing, so
// connections can be reused without pulling large bodies.
const maxDrain = 64 << 10

// HTTP probes check.URL with a GET. With ExpectStatus unset any 2xx
// response is healthy.
func HTTP(check *config.Check, client *http.Client) Func {
	return func(ctx context.Context) Result {
		res := Result{Kind: config.CheckHTTP, Target: check.URL}
		start := time.Now()

		status, err := get(ctx, client, check.URL)
		res.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.StatusCode = status

		switch {
		case check.ExpectStatus != 0 && status != check.ExpectStatus:
			res.Error = fmt.Sprintf("unexpected status %d, want %d", status, check.ExpectStatus)
		case check.ExpectStatus == 0 && (status < 200 || status > 299):
			res.Error = fmt.Sprintf("unexpected status %d", status)
		default:
			res.Healthy = true
		}
		return res
	}
}

func get(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return resp.StatusCode, nil
}

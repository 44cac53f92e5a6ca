package checks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/servicemon/internal/config"
	"github.com/vk/servicemon/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIO probes a Socket.IO server by opening a websocket connection to
// check.Namespace ("/" when empty) and waiting for the connect event.
func SocketIO(check *config.Check) Func {
	return func(ctx context.Context) Result {
		res := Result{Kind: config.CheckSocketIO, Target: check.URL}
		start := time.Now()

		err := dialSocketIO(ctx, check)
		res.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Healthy = true
		return res
	}
}

func dialSocketIO(ctx context.Context, check *config.Check) error {
	logger := ctxlog.FromContext(ctx).With("url", check.URL)

	parsedURL, err := url.Parse(check.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q must include scheme and host", check.URL)
	}

	namespace := check.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Socket.IO check connected", "namespace", namespace)
		report(nil)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		report(connectError(errs))
	})

	io.Connect()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timed out while waiting for initial connection: %w", ctx.Err())
	case err := <-done:
		return err
	}
}

func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connection refused")
	}
	if err, ok := args[0].(error); ok {
		return fmt.Errorf("connection failed: %w", err)
	}
	return fmt.Errorf("connection failed: %v", args[0])
}

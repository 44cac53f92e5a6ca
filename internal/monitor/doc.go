// Package monitor exposes a service's monitoring endpoints over HTTP.
//
// # Overview
//
// A Monitor owns a session for one embedding service: its name, the time it
// started, the registry of endpoints and a background HTTP listener. Every
// request names a single endpoint by path (GET /state, GET /help, ...). The
// dispatcher looks the name up in the registry, invokes the handler and
// wraps the payload in the report envelope:
//
//	["orders", {"current_time": "..."}, <payload>]
//
// # Default endpoints
//
// New installs protected endpoints that can never be unregistered:
//
//   - state:   {"status": "up", "start_time": <construction time>}
//   - showall: every registered endpoint name mapped to its description
//   - help:    same as showall
//   - status:  the service statistics, zeroed after each read; only when
//     the embedded service implements StatisticsProvider
//
// # Failure model
//
// Registry errors (duplicate names, protected removals) surface from New and
// from the registry methods. The request path never fails: unknown names get
// a {"<name>": "No such endpoint"} payload with 404, and handler errors or
// panics become {"error": ..., "endpoint": ...} with 500. HEAD answers 200
// or 404 without running the handler. A failed New removes the endpoints it
// had added, so a caller-supplied registry stays reusable.
//
// # Lifecycle
//
// Initializing -> Serving -> Closed. New binds the listener before returning
// so address errors are reported synchronously; Close shuts it down.
package monitor

// Package transport serves the MCP streamable HTTP endpoint together with
// health and metrics endpoints.
//
// # Middleware
//
// Every request passes through a net/http middleware chain: request ID
// assignment (X-Request-ID), structured logging via log/slog, panic
// recovery and Prometheus request metrics. The request ID is available to
// handlers through RequestIDFromContext.
//
// # Lifecycle
//
// Server wraps http.Server and shuts down gracefully on SIGINT/SIGTERM or
// when its context is canceled, waiting for in-flight requests within the
// configured timeout.
package transport

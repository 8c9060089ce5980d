package transport

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/xsearch/pkg/observability"
)

// HandlerConfig describes the endpoints served over HTTP.
type HandlerConfig struct {
	// MCP serves the streamable HTTP MCP endpoint on /mcp.
	MCP http.Handler

	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string

	Logger *slog.Logger
}

// NewHandler builds the HTTP mux and wraps it in the default middleware
// chain: RequestID, Logging, Recovery, Metrics.
func NewHandler(cfg HandlerConfig) http.Handler {
	mux := http.NewServeMux()
	if cfg.MCP != nil {
		mux.Handle("/mcp", cfg.MCP)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	chain := Chain(
		RequestID(),
		Logging(cfg.Logger),
		Recovery(),
		observability.MetricsMiddleware,
	)
	return chain(mux)
}

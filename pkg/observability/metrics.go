// Package observability provides Prometheus metrics, OpenTelemetry tracing
// and HTTP middleware for monitoring the xsearch server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// UpstreamBuckets defines histogram buckets suited for agentic search
// latencies, ranging from 250ms to 60s.
var UpstreamBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}

var (
	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsearch_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xsearch_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: UpstreamBuckets,
		},
		[]string{"method"},
	)

	// ToolCallsTotal counts MCP tool invocations by tool name and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsearch_tool_calls_total",
			Help: "Tool invocations",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration records end-to-end tool invocation time in seconds.
	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xsearch_tool_duration_seconds",
			Help:    "Tool invocation duration",
			Buckets: UpstreamBuckets,
		},
		[]string{"tool"},
	)

	// ToolResultsReturned records how many structured items a tool returned.
	ToolResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xsearch_tool_results_returned",
			Help:    "Structured items returned per tool call",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 30},
		},
		[]string{"tool"},
	)

	// UpstreamRequestsTotal counts requests sent to the xAI API.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsearch_upstream_requests_total",
			Help: "Upstream requests",
		},
		[]string{"model", "status"},
	)

	// UpstreamLatency records xAI API latency in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xsearch_upstream_latency_seconds",
			Help:    "Upstream latency",
			Buckets: UpstreamBuckets,
		},
		[]string{"model"},
	)

	// UpstreamTokensTotal counts tokens reported by the xAI API by direction (input/output).
	UpstreamTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsearch_upstream_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// ErrorsTotal counts caller-facing errors by category.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsearch_errors_total",
			Help: "Errors by category",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ToolCallsTotal,
		ToolDuration,
		ToolResultsReturned,
		UpstreamRequestsTotal,
		UpstreamLatency,
		UpstreamTokensTotal,
		ErrorsTotal,
	)
}

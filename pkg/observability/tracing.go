package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rhuss/xsearch"

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string // host:port or http(s)://host:port of an OTLP/HTTP collector
	ServiceName string
	Headers     map[string]string
}

// SetupTracing installs a global tracer provider. When tracing is disabled
// the global no-op provider stays in place and the returned shutdown
// function does nothing.
func SetupTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "xsearch"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		// Accept "collector:4318" as well as full URLs.
		endpoint := cfg.Endpoint
		insecure := true
		if strings.HasPrefix(endpoint, "https://") {
			endpoint = strings.TrimPrefix(endpoint, "https://")
			insecure = false
		} else {
			endpoint = strings.TrimPrefix(endpoint, "http://")
		}
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the tracer used by all xsearch spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartToolSpan starts a span covering one MCP tool invocation.
func StartToolSpan(ctx context.Context, tool, requestID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "mcp.tool/"+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("mcp.tool.name", tool),
			attribute.String("request.id", requestID),
		),
	)
}

// StartUpstreamSpan starts a span covering one xAI Responses API call.
func StartUpstreamSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "xai.responses.create",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("xai.model", model)),
	)
}

// RecordError records an error and its category on a span.
func RecordError(span trace.Span, err error, category string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if category != "" {
		span.SetAttributes(attribute.String("error.type", category))
	}
}

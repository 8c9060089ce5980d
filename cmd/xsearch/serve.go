package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rhuss/xsearch/pkg/config"
	"github.com/rhuss/xsearch/pkg/debug"
	"github.com/rhuss/xsearch/pkg/mcpserver"
	"github.com/rhuss/xsearch/pkg/observability"
	"github.com/rhuss/xsearch/pkg/search"
	"github.com/rhuss/xsearch/pkg/transport"
	"github.com/rhuss/xsearch/pkg/xai"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer debug.Close()
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug logging enabled", "categories", cats)
	}
	debug.Log("config", "effective configuration",
		"transport", cfg.Server.Transport,
		"port", cfg.Server.Port,
		"xai_timeout", cfg.XAI.Timeout,
		"structured_outputs", cfg.XAI.StructuredOutputs,
		"allowed_handles", cfg.Search.AllowedHandles,
		"excluded_handles", cfg.Search.ExcludedHandles,
		"metrics", cfg.Observability.Metrics.Enabled,
		"tracing", cfg.Observability.Tracing.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Observability.Tracing.Enabled,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		ServiceName: cfg.Observability.Tracing.ServiceName,
		Headers:     cfg.Observability.Tracing.Headers,
	})
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	server := newMCPServer(cfg)

	slog.Info("xsearch starting",
		"version", version,
		"transport", cfg.Server.Transport,
		"model", cfg.XAI.Model,
		"base_url", cfg.XAI.BaseURL,
		"api_key_env", cfg.XAI.APIKeyEnv,
	)
	if _, ok := os.LookupEnv(cfg.XAI.APIKeyEnv); !ok {
		slog.Warn("xAI API key not set, tool calls will fail until it is", "env", cfg.XAI.APIKeyEnv)
	}

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg, server)
	default:
		return server.Run(ctx, &mcp.StdioTransport{})
	}
}

// newMCPServer wires the xAI client, the search adapter and the tool surface.
func newMCPServer(cfg *config.Config) *mcp.Server {
	client := xai.New(xai.Config{
		BaseURL: cfg.XAI.BaseURL,
		Model:   cfg.XAI.Model,
		Timeout: cfg.XAI.Timeout,
	})

	adapter := search.New(client, xai.EnvCredential(cfg.XAI.APIKeyEnv), search.Options{
		AllowedHandles:    cfg.Search.AllowedHandles,
		ExcludedHandles:   cfg.Search.ExcludedHandles,
		StructuredOutputs: cfg.XAI.StructuredOutputs,
	})

	return mcpserver.New(adapter, mcpserver.Options{Name: "xsearch", Version: version})
}

func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server) error {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	handlerCfg := transport.HandlerConfig{
		MCP:    mcpHandler,
		Logger: slog.Default(),
	}
	if cfg.Observability.Metrics.Enabled {
		handlerCfg.MetricsPath = cfg.Observability.Metrics.Path
	}

	srv := transport.NewServer(transport.NewHandler(handlerCfg),
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(slog.Default()),
	)
	return srv.Run(ctx)
}

// loadConfig loads the layered configuration and applies command-line
// overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	changed := false
	if f := cmd.Flags().Lookup("transport"); f != nil && f.Changed {
		cfg.Server.Transport = f.Value.String()
		changed = true
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Server.Port = port
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

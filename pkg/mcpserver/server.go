package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/xsearch/pkg/api"
	"github.com/rhuss/xsearch/pkg/debug"
	"github.com/rhuss/xsearch/pkg/observability"
)

// Tool names.
const (
	ToolSearchPosts  = "search_posts"
	ToolGetUserPosts = "get_user_posts"
	ToolGetTrending  = "get_trending"
)

// Operations is the search surface served by the tools.
// *search.Adapter implements it.
type Operations interface {
	SearchPosts(ctx context.Context, req *api.SearchPostsRequest) (*api.Output, error)
	GetUserPosts(ctx context.Context, req *api.UserPostsRequest) (*api.Output, error)
	GetTrending(ctx context.Context, req *api.TrendingRequest) (*api.Output, error)
}

// Options configures the MCP server identity.
type Options struct {
	Name    string
	Version string
}

const instructions = "Search X (Twitter) through the xAI API. Use search_posts for keyword or topic " +
	"searches, get_user_posts for the recent posts of one account and get_trending for current trends. " +
	"Pass format=json to receive structured results."

// New creates an MCP server with the three search tools registered.
func New(ops Operations, opts Options) *mcp.Server {
	if opts.Name == "" {
		opts.Name = "xsearch"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: opts.Name, Version: opts.Version},
		&mcp.ServerOptions{Instructions: instructions},
	)

	handlers := map[string]mcp.ToolHandler{
		ToolSearchPosts:  handle(ToolSearchPosts, ops.SearchPosts),
		ToolGetUserPosts: handle(ToolGetUserPosts, ops.GetUserPosts),
		ToolGetTrending:  handle(ToolGetTrending, ops.GetTrending),
	}
	for _, tool := range Tools() {
		server.AddTool(tool, handlers[tool.Name])
	}

	return server
}

// Tools returns the definitions of the search tools.
func Tools() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        ToolSearchPosts,
			Title:       "Search X Posts",
			Description: "Search X (Twitter) for posts matching a query, optionally restricted to a date window and language. Returns markdown by default or structured JSON with format=json.",
			InputSchema: inputSchema(&api.SearchPostsRequest{}),
			Annotations: annotations("Search X Posts"),
		},
		{
			Name:        ToolGetUserPosts,
			Title:       "Get X User Posts",
			Description: "Get recent posts from a specific X (Twitter) user, optionally focused on a topic and date window.",
			InputSchema: inputSchema(&api.UserPostsRequest{}),
			Annotations: annotations("Get X User Posts"),
		},
		{
			Name:        ToolGetTrending,
			Title:       "Get X Trending Topics",
			Description: "Get current trending topics and hashtags on X (Twitter), globally or for a region, optionally filtered by category.",
			InputSchema: inputSchema(&api.TrendingRequest{}),
			Annotations: annotations("Get X Trending Topics"),
		},
	}
}

func annotations(title string) *mcp.ToolAnnotations {
	destructive := false
	openWorld := true
	return &mcp.ToolAnnotations{
		Title:           title,
		ReadOnlyHint:    true,
		DestructiveHint: &destructive,
		IdempotentHint:  true,
		OpenWorldHint:   &openWorld,
	}
}

// inputSchema reflects a request struct into a closed object schema.
func inputSchema(v any) map[string]any {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	s := r.Reflect(v)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(err)
	}
	return m
}

// handle adapts an operation to a low-level MCP tool handler.
func handle[T any](tool string, run func(context.Context, *T) (*api.Output, error)) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.NewString()
		ctx, span := observability.StartToolSpan(ctx, tool, requestID)
		defer span.End()

		start := time.Now()
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		debug.Log("mcp", "tool call received", "tool", tool, "request_id", requestID, "arguments", debug.Truncate(string(raw), 500))

		var in T
		var out *api.Output
		err := api.Decode(raw, &in)
		if err == nil {
			out, err = run(ctx, &in)
		}
		elapsed := time.Since(start)
		observability.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

		if err != nil {
			apiErr := api.AsError(err)
			observability.ToolCallsTotal.WithLabelValues(tool, "error").Inc()
			observability.ErrorsTotal.WithLabelValues(string(apiErr.Type)).Inc()
			observability.RecordError(span, apiErr, string(apiErr.Type))
			slog.Warn("tool call failed", "tool", tool, "request_id", requestID,
				"type", apiErr.Type, "error", apiErr.Message, "duration", elapsed)
			return errorResult(apiErr), nil
		}

		observability.ToolCallsTotal.WithLabelValues(tool, "ok").Inc()
		slog.Info("tool call", "tool", tool, "request_id", requestID, "duration", elapsed, "bytes", len(out.Text))
		return successResult(out), nil
	}
}

func successResult(out *api.Output) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: out.Text}},
	}
	if out.Structured != nil {
		result.StructuredContent = out.Structured
	}
	return result
}

func errorResult(apiErr *api.Error) *mcp.CallToolResult {
	data, err := json.Marshal(apiErr.Envelope())
	if err != nil {
		data = []byte(`{"error":"internal error","type":"upstream_server_error","retryable":true}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}

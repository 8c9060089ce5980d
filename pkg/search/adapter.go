package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rhuss/xsearch/pkg/api"
	"github.com/rhuss/xsearch/pkg/debug"
	"github.com/rhuss/xsearch/pkg/observability"
	"github.com/rhuss/xsearch/pkg/xai"
)

// Upstream sends one Responses API request. *xai.Client implements it.
type Upstream interface {
	Create(ctx context.Context, apiKey string, req *xai.Request) (*xai.Response, error)
}

// CredentialResolver returns the API key for one invocation.
type CredentialResolver func() (string, error)

// Options configures an Adapter.
type Options struct {
	// AllowedHandles restricts get_user_posts to these handles when non-empty.
	AllowedHandles []string

	// ExcludedHandles are excluded from search_posts results.
	ExcludedHandles []string

	// StructuredOutputs attaches a JSON schema to json-format requests.
	StructuredOutputs bool
}

// Adapter implements the X search operations. It holds no mutable state
// and is safe for concurrent use.
type Adapter struct {
	upstream   Upstream
	credential CredentialResolver
	opts       Options
}

// New creates an Adapter.
func New(upstream Upstream, credential CredentialResolver, opts Options) *Adapter {
	return &Adapter{
		upstream:   upstream,
		credential: credential,
		opts:       opts,
	}
}

// SearchPosts searches X posts matching a query.
func (a *Adapter) SearchPosts(ctx context.Context, req *api.SearchPostsRequest) (*api.Output, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	upReq := a.newRequest(req.Format, searchPostsPrompt(req),
		searchTool(req.FromDate, req.ToDate, a.opts.ExcludedHandles), "x_posts", postsSchema)
	resp, err := a.call(ctx, "search_posts", upReq)
	if err != nil {
		return nil, err
	}

	return a.postsOutput("search_posts", req.Format, resp, api.Limit(req.MaxResults),
		&api.PostsResult{Query: req.Query})
}

// GetUserPosts fetches recent posts of one X handle.
func (a *Adapter) GetUserPosts(ctx context.Context, req *api.UserPostsRequest) (*api.Output, error) {
	if err := req.Validate(a.opts.AllowedHandles); err != nil {
		return nil, err
	}

	upReq := a.newRequest(req.Format, userPostsPrompt(req),
		userTool(req.Handle, req.FromDate, req.ToDate), "x_posts", postsSchema)
	resp, err := a.call(ctx, "get_user_posts", upReq)
	if err != nil {
		return nil, err
	}

	return a.postsOutput("get_user_posts", req.Format, resp, api.Limit(req.MaxResults),
		&api.PostsResult{Handle: req.Handle})
}

// GetTrending fetches trending topics, globally or for a locale.
func (a *Adapter) GetTrending(ctx context.Context, req *api.TrendingRequest) (*api.Output, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	upReq := a.newRequest(req.Format, trendingPrompt(req), trendingTool(), "x_trends", trendsSchema)
	resp, err := a.call(ctx, "get_trending", upReq)
	if err != nil {
		return nil, err
	}

	text := answerText(resp)
	if req.Format != api.FormatJSON {
		return &api.Output{Text: text}, nil
	}

	result := &api.TrendsResult{Locale: req.Locale, Citations: resp.Citations()}
	trends, ok := parseTrends(text, api.Limit(req.MaxResults))
	if ok {
		result.Trends = trends
	} else {
		result.Trends = []api.Trend{}
		result.Partial = true
		result.Text = text
	}
	result.Count = len(result.Trends)
	observability.ToolResultsReturned.WithLabelValues("get_trending").Observe(float64(result.Count))

	return structuredOutput(result)
}

// call resolves the credential and performs the single upstream request.
func (a *Adapter) call(ctx context.Context, op string, req *xai.Request) (*xai.Response, error) {
	key, err := a.credential()
	if err != nil {
		return nil, api.AsError(err)
	}

	debug.Log("search", "upstream call", "operation", op, "tools", len(req.Tools))
	if debug.TraceIsEnabled("search") {
		for _, msg := range req.Input {
			debug.Trace("search", "prompt", "operation", op, "role", msg.Role, "content", msg.Content)
		}
	}
	start := time.Now()
	resp, err := a.upstream.Create(ctx, key, req)
	if err != nil {
		apiErr := api.AsError(err)
		debug.Log("search", "upstream failed", "operation", op, "type", apiErr.Type, "elapsed", time.Since(start))
		return nil, apiErr
	}
	debug.Log("search", "upstream done", "operation", op, "response_id", resp.ID, "elapsed", time.Since(start))
	return resp, nil
}

func (a *Adapter) newRequest(f api.Format, prompt string, tool xai.Tool, schemaName string, schema func() json.RawMessage) *xai.Request {
	temperature := 0.0
	req := &xai.Request{
		Input: []xai.InputMessage{
			{Role: "system", Content: systemInstruction(f)},
			{Role: "user", Content: prompt},
		},
		Tools:       []xai.Tool{tool},
		Temperature: &temperature,
		Store:       false,
	}
	if f == api.FormatJSON && a.opts.StructuredOutputs {
		req.Text = &xai.TextConfig{Format: xai.TextFormat{
			Type:   "json_schema",
			Name:   schemaName,
			Schema: schema(),
		}}
	}
	return req
}

func (a *Adapter) postsOutput(op string, f api.Format, resp *xai.Response, limit int, result *api.PostsResult) (*api.Output, error) {
	text := answerText(resp)
	if f != api.FormatJSON {
		return &api.Output{Text: text}, nil
	}

	result.Citations = resp.Citations()
	posts, ok := parsePosts(text, limit)
	if ok {
		result.Posts = posts
	} else {
		result.Posts = []api.Post{}
		result.Partial = true
		result.Text = text
	}
	result.Count = len(result.Posts)
	observability.ToolResultsReturned.WithLabelValues(op).Observe(float64(result.Count))
	if result.Partial {
		debug.Log("search", "answer not parseable, returning partial result", "operation", op)
	}

	return structuredOutput(result)
}

func structuredOutput(result any) (*api.Output, error) {
	text, err := marshalResult(result)
	if err != nil {
		return nil, api.NewUpstreamError(api.ErrorTypeUpstreamServer, 0,
			fmt.Sprintf("failed to encode result: %s", err.Error()), "").WithCause(err)
	}
	return &api.Output{Text: text, Structured: result}, nil
}

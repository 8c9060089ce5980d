package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rhuss/xsearch/pkg/api"
	"github.com/rhuss/xsearch/pkg/debug"
	"github.com/rhuss/xsearch/pkg/observability"
)

const (
	// DefaultBaseURL is the public xAI API endpoint.
	DefaultBaseURL = "https://api.x.ai/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "grok-4-fast"

	// DefaultTimeout bounds one upstream call.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 8 << 20
)

// Config holds the settings of a Client.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs requests against the xAI Responses API. A Client is
// safe for concurrent use; it only shares the pooled HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
}

// New creates a Client. Zero values in cfg are replaced by defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		// No client timeout; each call gets its deadline from the context.
		hc = &http.Client{}
	}

	return &Client{
		httpClient: hc,
		baseURL:    baseURL,
		model:      model,
		timeout:    timeout,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Create sends req to POST {baseURL}/responses exactly once. An empty
// req.Model is replaced by the configured model.
func (c *Client) Create(ctx context.Context, apiKey string, req *Request) (*Response, error) {
	reqCopy := *req
	if reqCopy.Model == "" {
		reqCopy.Model = c.model
	}

	ctx, span := observability.StartUpstreamSpan(ctx, reqCopy.Model)
	defer span.End()

	resp, err := c.do(ctx, apiKey, &reqCopy)
	if err != nil {
		apiErr := api.AsError(err)
		observability.RecordError(span, apiErr, string(apiErr.Type))
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) do(callerCtx context.Context, apiKey string, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewUpstreamError(api.ErrorTypeUpstreamServer, 0,
			fmt.Sprintf("failed to marshal request: %s", err.Error()), "").WithCause(err)
	}

	ctx, cancel := context.WithTimeout(callerCtx, c.timeout)
	defer cancel()

	url := c.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewUpstreamError(api.ErrorTypeUpstreamServer, 0,
			fmt.Sprintf("failed to create HTTP request: %s", err.Error()), "").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	debug.Log("xai", "request", "method", http.MethodPost, "url", url,
		"model", req.Model, "key", debug.RedactKey(apiKey), "body_bytes", len(body))
	debug.Raw("xai", string(body))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	observability.UpstreamLatency.WithLabelValues(req.Model).Observe(elapsed.Seconds())
	if err != nil {
		mapped := MapNetworkError(callerCtx, err)
		observability.UpstreamRequestsTotal.WithLabelValues(req.Model, string(mapped.Type)).Inc()
		debug.Log("xai", "transport failure", "error", err, "elapsed", elapsed)
		return nil, mapped
	}
	defer httpResp.Body.Close()

	observability.UpstreamRequestsTotal.WithLabelValues(req.Model, strconv.Itoa(httpResp.StatusCode)).Inc()
	debug.Log("xai", "response", "status", httpResp.StatusCode, "elapsed", elapsed)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, MapNetworkError(callerCtx, err)
	}
	debug.Raw("xai", string(data))

	resp, err := ParseResponse(data)
	if err != nil {
		return nil, api.NewUpstreamError(api.ErrorTypeUpstreamServer, httpResp.StatusCode,
			fmt.Sprintf("failed to parse xAI response: %s", err.Error()), debug.Truncate(string(data), 200)).WithCause(err)
	}

	if resp.Usage != nil {
		model := req.Model
		observability.UpstreamTokensTotal.WithLabelValues(model, "input").Add(float64(resp.Usage.InputTokens))
		observability.UpstreamTokensTotal.WithLabelValues(model, "output").Add(float64(resp.Usage.OutputTokens))
	}
	return resp, nil
}

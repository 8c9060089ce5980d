package xai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rhuss/xsearch/pkg/api"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		kind   FailureKind
		want   api.ErrorType
	}{
		{401, FailureNone, api.ErrorTypeUpstreamAuth},
		{403, FailureNone, api.ErrorTypeUpstreamAuth},
		{429, FailureNone, api.ErrorTypeUpstreamRateLimit},
		{400, FailureNone, api.ErrorTypeUpstreamRequest},
		{404, FailureNone, api.ErrorTypeUpstreamRequest},
		{405, FailureNone, api.ErrorTypeUpstreamRequest},
		{409, FailureNone, api.ErrorTypeUpstreamRequest},
		{413, FailureNone, api.ErrorTypeUpstreamRequest},
		{415, FailureNone, api.ErrorTypeUpstreamRequest},
		{422, FailureNone, api.ErrorTypeUpstreamRequest},
		{418, FailureNone, api.ErrorTypeUpstreamRequest},
		{408, FailureNone, api.ErrorTypeUpstreamTimeout},
		{504, FailureNone, api.ErrorTypeUpstreamTimeout},
		{500, FailureNone, api.ErrorTypeUpstreamServer},
		{502, FailureNone, api.ErrorTypeUpstreamServer},
		{503, FailureNone, api.ErrorTypeUpstreamServer},
		{599, FailureNone, api.ErrorTypeUpstreamServer},
		{0, FailureTimeout, api.ErrorTypeUpstreamTimeout},
		{0, FailureCanceled, api.ErrorTypeCanceled},
		{0, FailureNetwork, api.ErrorTypeUpstreamServer},
	}

	for _, tt := range tests {
		if got := Classify(tt.status, tt.kind); got != tt.want {
			t.Errorf("Classify(%d, %d) = %q, want %q", tt.status, tt.kind, got, tt.want)
		}
	}
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    api.ErrorType
		wantMessage string
		wantDetail  string
	}{
		{
			name:        "auth",
			status:      401,
			body:        `{"error":{"message":"Incorrect API key provided"}}`,
			wantType:    api.ErrorTypeUpstreamAuth,
			wantMessage: "Authentication failed. Check the xAI API key.",
			wantDetail:  "Incorrect API key provided",
		},
		{
			name:        "rate limit",
			status:      429,
			body:        "",
			wantType:    api.ErrorTypeUpstreamRateLimit,
			wantMessage: "Rate limit exceeded. Please wait before retrying.",
		},
		{
			name:        "server with string error",
			status:      500,
			body:        `{"code":"internal","error":"upstream exploded"}`,
			wantType:    api.ErrorTypeUpstreamServer,
			wantMessage: "API request failed with status 500",
			wantDetail:  "upstream exploded",
		},
		{
			name:        "bad request with plain text",
			status:      400,
			body:        "  Model not found: grok-x  ",
			wantType:    api.ErrorTypeUpstreamRequest,
			wantMessage: "API request failed with status 400",
			wantDetail:  "Model not found: grok-x",
		},
		{
			name:        "gateway timeout",
			status:      504,
			body:        "",
			wantType:    api.ErrorTypeUpstreamTimeout,
			wantMessage: "Request timed out (HTTP 504)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := MapHTTPError(makeResponse(tt.status, tt.body))
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
		})
	}
}

func TestExtractErrorMessage_LimitsBody(t *testing.T) {
	body := strings.Repeat("x", 10000)
	got := ExtractErrorMessage(strings.NewReader(body))
	if len(got) != 4096 {
		t.Errorf("expected 4096 bytes, got %d", len(got))
	}
	if ExtractErrorMessage(nil) != "" {
		t.Error("nil body should yield empty message")
	}
}

func TestMapNetworkError(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want api.ErrorType
	}{
		{"caller canceled", canceled, context.Canceled, api.ErrorTypeCanceled},
		{"deadline", context.Background(), context.DeadlineExceeded, api.ErrorTypeUpstreamTimeout},
		{"connection refused", context.Background(), errors.New("dial tcp: connection refused"), api.ErrorTypeUpstreamServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapNetworkError(tt.ctx, tt.err)
			if got.Type != tt.want {
				t.Errorf("type = %q, want %q", got.Type, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("expected mapped error to wrap the cause")
			}
		})
	}
}

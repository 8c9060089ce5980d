package xai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rhuss/xsearch/pkg/api"
)

// FailureKind describes how a call failed when no HTTP status is available.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTimeout
	FailureCanceled
	FailureNetwork
)

// statusClasses maps specific HTTP statuses to error categories. Statuses
// not listed fall back to their class (4xx request, 5xx server).
var statusClasses = map[int]api.ErrorType{
	http.StatusUnauthorized:          api.ErrorTypeUpstreamAuth,
	http.StatusForbidden:             api.ErrorTypeUpstreamAuth,
	http.StatusTooManyRequests:       api.ErrorTypeUpstreamRateLimit,
	http.StatusRequestTimeout:        api.ErrorTypeUpstreamTimeout,
	http.StatusGatewayTimeout:        api.ErrorTypeUpstreamTimeout,
	http.StatusBadRequest:            api.ErrorTypeUpstreamRequest,
	http.StatusNotFound:              api.ErrorTypeUpstreamRequest,
	http.StatusMethodNotAllowed:      api.ErrorTypeUpstreamRequest,
	http.StatusConflict:              api.ErrorTypeUpstreamRequest,
	http.StatusRequestEntityTooLarge: api.ErrorTypeUpstreamRequest,
	http.StatusUnsupportedMediaType:  api.ErrorTypeUpstreamRequest,
	http.StatusUnprocessableEntity:   api.ErrorTypeUpstreamRequest,
}

// Classify maps an HTTP status, or a failure kind when status is 0, to an
// error category.
func Classify(status int, kind FailureKind) api.ErrorType {
	switch kind {
	case FailureTimeout:
		return api.ErrorTypeUpstreamTimeout
	case FailureCanceled:
		return api.ErrorTypeCanceled
	case FailureNetwork:
		return api.ErrorTypeUpstreamServer
	}

	if t, ok := statusClasses[status]; ok {
		return t
	}
	switch {
	case status >= 400 && status < 500:
		return api.ErrorTypeUpstreamRequest
	default:
		return api.ErrorTypeUpstreamServer
	}
}

// MapHTTPError converts a non-2xx response into a categorized *api.Error.
// Up to 4 KiB of the body is read for a detail message.
func MapHTTPError(resp *http.Response) *api.Error {
	detail := ExtractErrorMessage(resp.Body)
	t := Classify(resp.StatusCode, FailureNone)

	var message string
	switch t {
	case api.ErrorTypeUpstreamAuth:
		message = "Authentication failed. Check the xAI API key."
	case api.ErrorTypeUpstreamRateLimit:
		message = "Rate limit exceeded. Please wait before retrying."
	case api.ErrorTypeUpstreamTimeout:
		message = fmt.Sprintf("Request timed out (HTTP %d)", resp.StatusCode)
	default:
		message = fmt.Sprintf("API request failed with status %d", resp.StatusCode)
	}
	return api.NewUpstreamError(t, resp.StatusCode, message, detail)
}

// MapNetworkError converts a transport-level error into a categorized
// *api.Error. callerCtx is the context supplied by the caller, used to
// tell a caller cancellation apart from the client deadline.
func MapNetworkError(callerCtx context.Context, err error) *api.Error {
	switch {
	case errors.Is(callerCtx.Err(), context.Canceled):
		return api.NewCanceledError("request canceled by caller").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return api.NewUpstreamError(Classify(0, FailureTimeout), 0, "Request timed out", "").WithCause(err)
	case errors.Is(err, context.Canceled):
		return api.NewCanceledError("request canceled").WithCause(err)
	}
	return api.NewUpstreamError(Classify(0, FailureNetwork), 0,
		fmt.Sprintf("xAI API unreachable: %s", err.Error()), "").WithCause(err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ExtractErrorMessage reads an error body and returns its message. It
// understands {"error":{"message":...}}, {"error":"..."} and
// {"message":...}; anything else is returned as trimmed text.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil {
		if len(errResp.Error) > 0 {
			var obj errorObject
			if err := json.Unmarshal(errResp.Error, &obj); err == nil && obj.Message != "" {
				return obj.Message
			}
			var s string
			if err := json.Unmarshal(errResp.Error, &s); err == nil && s != "" {
				return s
			}
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}

	return strings.TrimSpace(string(data))
}

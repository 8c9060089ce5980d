package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the category of an adapter error.
type ErrorType string

const (
	ErrorTypeConfiguration     ErrorType = "configuration_error"
	ErrorTypeValidation        ErrorType = "validation_error"
	ErrorTypeUpstreamAuth      ErrorType = "upstream_auth_error"
	ErrorTypeUpstreamRateLimit ErrorType = "upstream_rate_limit_error"
	ErrorTypeUpstreamRequest   ErrorType = "upstream_request_error"
	ErrorTypeUpstreamTimeout   ErrorType = "upstream_timeout_error"
	ErrorTypeUpstreamServer    ErrorType = "upstream_server_error"
	ErrorTypeCanceled          ErrorType = "canceled"
	ErrorTypeInternal          ErrorType = "internal_error"
)

// Retryable reports whether a caller may retry the same request later
// without changing input or configuration.
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrorTypeUpstreamRateLimit, ErrorTypeUpstreamTimeout, ErrorTypeUpstreamServer, ErrorTypeCanceled:
		return true
	default:
		return false
	}
}

// Remediation returns a short human-readable hint for the error category.
func (t ErrorType) Remediation() string {
	switch t {
	case ErrorTypeConfiguration:
		return "Set the xAI API key in the server environment and restart the call. Keys are issued at https://console.x.ai/."
	case ErrorTypeValidation:
		return "Correct the tool arguments and call again."
	case ErrorTypeUpstreamAuth:
		return "The xAI API rejected the key. Check or rotate the API key."
	case ErrorTypeUpstreamRateLimit:
		return "The xAI API rate limit or quota was hit. Wait before retrying."
	case ErrorTypeUpstreamRequest:
		return "The xAI API rejected the request shape. Check the configured model and search parameters."
	case ErrorTypeUpstreamTimeout:
		return "The xAI API did not answer in time. Try again later or narrow the query."
	case ErrorTypeUpstreamServer:
		return "The xAI API reported an internal failure or was unreachable. Try again later."
	case ErrorTypeCanceled:
		return "The call was canceled before it completed."
	case ErrorTypeInternal:
		return "The xsearch server hit an unexpected failure. Check the server logs."
	default:
		return ""
	}
}

// Error is the structured error returned by every adapter operation.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Param   string    `json:"param,omitempty"`
	Status  int       `json:"status,omitempty"`
	Detail  string    `json:"detail,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status: %d)", e.Type, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error and returns e.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// NewConfigurationError creates an Error for missing or broken server configuration.
func NewConfigurationError(message string) *Error {
	return &Error{Type: ErrorTypeConfiguration, Message: message}
}

// NewValidationError creates an Error for invalid tool arguments.
func NewValidationError(param, message string) *Error {
	return &Error{Type: ErrorTypeValidation, Param: param, Message: message}
}

// NewUpstreamError creates an Error of the given upstream category.
func NewUpstreamError(t ErrorType, status int, message, detail string) *Error {
	return &Error{Type: t, Status: status, Message: message, Detail: detail}
}

// NewInternalError creates an Error for a failure inside xsearch itself.
func NewInternalError(message string) *Error {
	return &Error{Type: ErrorTypeInternal, Message: message}
}

// NewCanceledError creates an Error for a call abandoned by the caller.
func NewCanceledError(message string) *Error {
	return &Error{Type: ErrorTypeCanceled, Message: message}
}

// AsError normalizes any error into an *Error. Errors that are not already
// categorized are reported as upstream server errors, except context
// cancellation and deadline errors which keep their meaning.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return NewCanceledError("request canceled by caller").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewUpstreamError(ErrorTypeUpstreamTimeout, 0, "request timed out", "").WithCause(err)
	}
	return NewUpstreamError(ErrorTypeUpstreamServer, 0, fmt.Sprintf("unexpected error: %s", err.Error()), "").WithCause(err)
}

// ErrorEnvelope is the caller-facing JSON body of a failed tool call.
type ErrorEnvelope struct {
	Error       string    `json:"error"`
	Type        ErrorType `json:"type"`
	Param       string    `json:"param,omitempty"`
	Status      int       `json:"status,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Retryable   bool      `json:"retryable"`
	Remediation string    `json:"remediation,omitempty"`
}

// Envelope converts e into its caller-facing representation.
func (e *Error) Envelope() ErrorEnvelope {
	return ErrorEnvelope{
		Error:       e.Message,
		Type:        e.Type,
		Param:       e.Param,
		Status:      e.Status,
		Detail:      e.Detail,
		Retryable:   e.Type.Retryable(),
		Remediation: e.Type.Remediation(),
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// maxScopedHandles is the largest excluded_x_handles list x_search accepts.
const maxScopedHandles = 10

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.transport must be a known value.
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
		// valid
	default:
		errs = append(errs, fmt.Errorf("server.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport))
	}

	// server.port must be a valid TCP port when serving HTTP.
	if c.Server.Transport == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("server timeouts must not be negative"))
	}

	// xai.base_url must be an absolute http(s) URL.
	if u, err := url.Parse(c.XAI.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("xai.base_url must be an absolute http(s) URL, got %q", c.XAI.BaseURL))
	}
	if strings.TrimSpace(c.XAI.Model) == "" {
		errs = append(errs, fmt.Errorf("xai.model is required"))
	}
	if c.XAI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("xai.timeout must be > 0, got %s", c.XAI.Timeout))
	}
	if strings.TrimSpace(c.XAI.APIKeyEnv) == "" {
		errs = append(errs, fmt.Errorf("xai.api_key_env is required"))
	}

	errs = append(errs, validateHandles("search.allowed_handles", c.Search.AllowedHandles, 0)...)
	errs = append(errs, validateHandles("search.excluded_handles", c.Search.ExcludedHandles, maxScopedHandles)...)

	// observability.metrics.path must be absolute when metrics are on.
	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with /, got %q", c.Observability.Metrics.Path))
	}
	if c.Observability.Metrics.Enabled && (c.Observability.Metrics.Path == "/mcp" || c.Observability.Metrics.Path == "/healthz") {
		errs = append(errs, fmt.Errorf("observability.metrics.path %q collides with a built-in endpoint", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}

// validateHandles checks handle syntax and, when limit > 0, the list size.
func validateHandles(field string, handles []string, limit int) []error {
	var errs []error
	if limit > 0 && len(handles) > limit {
		errs = append(errs, fmt.Errorf("%s accepts at most %d handles, got %d", field, limit, len(handles)))
	}
	for i, h := range handles {
		if !handlePattern.MatchString(strings.TrimPrefix(strings.TrimSpace(h), "@")) {
			errs = append(errs, fmt.Errorf("%s[%d] is not a valid X handle: %q", field, i, h))
		}
	}
	return errs
}

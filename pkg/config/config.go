// Package config provides unified configuration for the xsearch server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. .env file loaded into the process environment (existing variables win)
//  4. Environment variable overrides (XSEARCH_ prefix)
//  5. Validation
//
// The xAI API key is never part of the configuration. The config only
// names the environment variable holding it; the key is read on every
// tool invocation.
package config

import "time"

// Config holds all configuration for the xsearch server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	XAI           XAIConfig           `yaml:"xai"`
	Search        SearchConfig        `yaml:"search"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ServerConfig holds MCP transport settings.
type ServerConfig struct {
	Transport       string        `yaml:"transport"`        // "stdio" or "http", default: "stdio"
	Port            int           `yaml:"port"`             // http only, default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 0 (disabled, MCP streams stay open)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// XAIConfig holds upstream API settings.
type XAIConfig struct {
	BaseURL           string        `yaml:"base_url"`           // default: https://api.x.ai/v1
	Model             string        `yaml:"model"`              // default: grok-4-fast
	Timeout           time.Duration `yaml:"timeout"`            // default: 30s
	APIKeyEnv         string        `yaml:"api_key_env"`        // default: XAI_API_KEY
	StructuredOutputs bool          `yaml:"structured_outputs"` // default: false
}

// SearchConfig holds handle scoping for searches.
type SearchConfig struct {
	AllowedHandles  []string `yaml:"allowed_handles"`  // restricts get_user_posts
	ExcludedHandles []string `yaml:"excluded_handles"` // excluded from search_posts
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // ERROR, WARN, INFO, DEBUG, TRACE; default: INFO
	Debug      string `yaml:"debug"` // comma-separated debug categories
	File       string `yaml:"file"`  // optional rotated log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool              `yaml:"enabled"`      // default: false
	Endpoint    string            `yaml:"endpoint"`     // OTLP/HTTP collector, e.g. localhost:4318
	ServiceName string            `yaml:"service_name"` // default: xsearch
	Headers     map[string]string `yaml:"headers"`
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Transport:       TransportStdio,
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		XAI: XAIConfig{
			BaseURL:   "https://api.x.ai/v1",
			Model:     "grok-4-fast",
			Timeout:   30 * time.Second,
			APIKeyEnv: "XAI_API_KEY",
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Tracing: TracingConfig{
				ServiceName: "xsearch",
			},
		},
	}
}

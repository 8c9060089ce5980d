package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, XSEARCH_CONFIG env, ./config.yaml, /etc/xsearch/config.yaml)
//  3. .env file in the working directory (never overrides set variables)
//  4. XSEARCH_* environment variable overrides
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := loadEnvFiles(".env"); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. XSEARCH_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/xsearch/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("XSEARCH_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/xsearch/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
// Unknown keys are rejected so typos surface at startup.
func loadYAMLFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// loadEnvFiles loads KEY=VALUE files into the process environment.
// Missing files are skipped; variables already set are kept.
func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides maps XSEARCH_* environment variables to config fields.
// Logging level and debug categories are read by pkg/debug directly.
func applyEnvOverrides(cfg *Config) error {
	var err error
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = splitList(v)
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", name, convErr)
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" && err == nil {
			d, convErr := time.ParseDuration(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", name, convErr)
				return
			}
			*dst = d
		}
	}
	flag := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" && err == nil {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", name, convErr)
				return
			}
			*dst = b
		}
	}

	str("XSEARCH_TRANSPORT", &cfg.Server.Transport)
	num("XSEARCH_PORT", &cfg.Server.Port)
	str("XSEARCH_XAI_BASE_URL", &cfg.XAI.BaseURL)
	str("XSEARCH_XAI_MODEL", &cfg.XAI.Model)
	dur("XSEARCH_XAI_TIMEOUT", &cfg.XAI.Timeout)
	str("XSEARCH_API_KEY_ENV", &cfg.XAI.APIKeyEnv)
	flag("XSEARCH_STRUCTURED_OUTPUTS", &cfg.XAI.StructuredOutputs)
	list("XSEARCH_ALLOWED_HANDLES", &cfg.Search.AllowedHandles)
	list("XSEARCH_EXCLUDED_HANDLES", &cfg.Search.ExcludedHandles)
	str("XSEARCH_LOG_FILE", &cfg.Logging.File)
	flag("XSEARCH_METRICS_ENABLED", &cfg.Observability.Metrics.Enabled)
	flag("XSEARCH_TRACING_ENABLED", &cfg.Observability.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Observability.Tracing.Endpoint)
	str("XSEARCH_OTLP_ENDPOINT", &cfg.Observability.Tracing.Endpoint)

	return err
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package debug provides category-based debug logging for xsearch.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via XSEARCH_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via XSEARCH_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("xai", "request", "method", "POST", "url", url)
//	if debug.Enabled("xai") { /* expensive formatting */ }
//
// Categories: xai, search, mcp, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
//
// All output goes to stderr and, optionally, to a rotated log file.
// Stdout is never written because the stdio MCP transport owns it.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
// At TRACE, full untruncated request/response bodies are logged.
const LevelTrace = slog.LevelDebug - 4

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

// output is where Raw writes. It is replaced by Init when a log file is configured.
var output io.Writer = os.Stderr

// rotator is the open log file, if any.
var rotator *lumberjack.Logger

func init() {
	// Initialize from environment for immediate availability.
	// Can be re-initialized later via Init() with config values.
	categories = parseCategories(os.Getenv("XSEARCH_DEBUG"))
}

// Options configures the logging system.
type Options struct {
	Categories string // comma-separated debug categories
	Level      string // ERROR, WARN, INFO, DEBUG or TRACE

	// File, when set, receives a copy of every log line. The file is
	// rotated once it reaches MaxSizeMB.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init configures the debug system. Called at startup with values
// from config and/or environment. Environment overrides config.
func Init(opts Options) {
	cats := os.Getenv("XSEARCH_DEBUG")
	if cats == "" {
		cats = opts.Categories
	}
	categories = parseCategories(cats)

	level := os.Getenv("XSEARCH_LOG_LEVEL")
	if level == "" {
		level = opts.Level
	}

	Close()
	output = os.Stderr
	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    defaultInt(opts.MaxSizeMB, 10),
			MaxBackups: defaultInt(opts.MaxBackups, 5),
			MaxAge:     defaultInt(opts.MaxAgeDays, 30),
			LocalTime:  true,
		}
		output = io.MultiWriter(os.Stderr, rotator)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when XSEARCH_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE level is active for the given category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes plain text without any slog formatting.
// Use this for copy-paste-ready output (full HTTP bodies).
// Only emitted when category is enabled AND level is TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(output, text)
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the list of enabled categories.
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// RedactKey masks an API key for logging, keeping only a short prefix.
func RedactKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***"
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

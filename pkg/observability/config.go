// Package observability provides structured logging and metrics for the
// cohort engine: a slog handler that injects OpenTelemetry trace context,
// and OTel instruments (bridged to Prometheus) tracking walk progress.
package observability

import "log/slog"

// AppMode identifies how the binary was invoked.
type AppMode string

const (
	// ModeCLI is a one-shot `cohort run` invocation.
	ModeCLI AppMode = "cli"
	// ModeServe is a long-running process exposing /metrics.
	ModeServe AppMode = "serve"
)

const defaultServiceName = "gix-of-theseus"

// Config holds logging/metrics setup options.
type Config struct {
	ServiceName string
	Mode        AppMode
	LogLevel    slog.Level
	LogJSON     bool
}

// DefaultConfig returns sensible defaults for CLI use.
func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		Mode:        ModeCLI,
		LogLevel:    slog.LevelInfo,
		LogJSON:     true,
	}
}

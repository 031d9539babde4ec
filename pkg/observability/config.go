// Package observability initializes OpenTelemetry tracing, metrics, and
// structured logging for worklog. With no OTLP endpoint configured the
// providers are no-ops and logging is the only active output.
package observability

import "log/slog"

// defaultServiceName identifies the binary in telemetry when unset.
const defaultServiceName = "worklog"

// defaultShutdownTimeoutSec bounds the telemetry flush on exit.
const defaultShutdownTimeoutSec = 5

// Config controls provider initialization.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	// Zero uses the OTel SDK default (parent-based with always-on root).
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

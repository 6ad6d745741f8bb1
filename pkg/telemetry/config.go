package telemetry

import "fmt"

// Config contains the telemetry configuration for hydrate.
type Config struct {
	// ServiceName identifies this service in telemetry output.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Logging contains logging configuration.
	Logging LoggingConfig

	// Tracing contains tracing configuration.
	Tracing TracingConfig

	// Metrics contains metrics configuration.
	Metrics MetricsConfig

	// Events contains event publishing configuration.
	Events EventsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Output specifies where logs are written (stdout, stderr).
	Output string
}

// TracingConfig configures tracing.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	Enabled bool

	// Exporter specifies the span exporter (stdout, none).
	Exporter string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	Enabled bool

	// Namespace is the metric name prefix.
	Namespace string
}

// EventsConfig configures the event publisher.
type EventsConfig struct {
	// Enabled controls whether events are published.
	Enabled bool

	// BufferSize is the event channel buffer size.
	BufferSize int
}

// DefaultConfig returns a configuration suitable for CLI use: console
// logging at info, metrics collected under the "hydrate" namespace, events
// buffered, tracing off.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "hydrate",
		ServiceVersion: "dev",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "hydrate",
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
		},
	}
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("telemetry: service name is required")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("telemetry: unsupported log format %q", c.Logging.Format)
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "none":
		default:
			return fmt.Errorf("telemetry: unsupported trace exporter %q", c.Tracing.Exporter)
		}
	}
	return nil
}

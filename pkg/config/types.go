// Package config defines the run configuration for hydrate and its YAML
// loader. A configuration comes from an optional YAML file with CLI flags
// layered on top; defaults are applied before validation.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "100ms"
// or "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full run configuration.
type Config struct {
	// Root is the directory whose subtree is scanned for placeholders.
	Root string `yaml:"root"`

	// Suffix is the placeholder naming convention. Default ".cloudf".
	Suffix string `yaml:"suffix"`

	// ExcludePattern is a regular expression matched against the absolute
	// path of each placeholder; matching entries are never materialized.
	ExcludePattern string `yaml:"exclude_pattern"`

	// Workers is the concurrency limit for one cycle. Zero means one worker
	// per available processing unit.
	Workers int `yaml:"workers" validate:"min=0"`

	// PollInterval is how often a waiter re-checks existence.
	PollInterval Duration `yaml:"poll_interval" validate:"min=0"`

	// RetryInterval is how often materialization is re-triggered while an
	// entry still exists.
	RetryInterval Duration `yaml:"retry_interval" validate:"min=0"`

	// Timeout is the total wait budget per entry.
	Timeout Duration `yaml:"timeout" validate:"min=0"`

	// MaxCycles bounds the run. Zero means cycle until convergence.
	MaxCycles int `yaml:"max_cycles" validate:"min=0"`

	// Opener is the command used to trigger materialization. Empty selects
	// the platform default.
	Opener string `yaml:"opener"`

	// Watch enables fsnotify acceleration of vanish detection.
	Watch bool `yaml:"watch"`

	// MetricsAddr, when set, serves Prometheus metrics on this address for
	// the duration of the run (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`

	// Trace enables OpenTelemetry span export to stdout.
	Trace bool `yaml:"trace"`

	// LogLevel sets the minimum log level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with their defaults. The interval and
// timeout defaults match the engine's.
func (c *Config) ApplyDefaults() {
	if c.Suffix == "" {
		c.Suffix = ".cloudf"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(100 * time.Millisecond)
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = Duration(2 * time.Second)
	}
	if c.Timeout <= 0 {
		c.Timeout = Duration(10 * time.Minute)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

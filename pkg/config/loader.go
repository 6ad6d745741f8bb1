package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load reads a YAML configuration file, applies defaults, and validates the
// result. Unknown fields are rejected so typos surface at startup instead of
// silently running with defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration's structural constraints. The exclusion
// pattern is compiled later by the engine, which owns that error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RetryInterval < c.PollInterval {
		return fmt.Errorf("invalid configuration: retry_interval %s is shorter than poll_interval %s",
			c.RetryInterval.Std(), c.PollInterval.Std())
	}
	return nil
}

// Package config provides configuration loading and validation for consensus-go.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns the built-in configuration used when no config file is
// given; input and output paths still have to come from flags.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Sampling defaults mirror the model's reference settings
	if cfg.Sampling.Draws == 0 {
		cfg.Sampling.Draws = 800
	}
	if cfg.Sampling.Tune == 0 {
		cfg.Sampling.Tune = 800
	}
	if cfg.Sampling.Chains == 0 {
		cfg.Sampling.Chains = 2
	}
	if cfg.Sampling.TargetAccept == 0 {
		cfg.Sampling.TargetAccept = 0.9
	}
	if cfg.Sampling.Seed == 0 {
		cfg.Sampling.Seed = 1
	}
	if cfg.Sampling.MaxLeapfrog == 0 {
		cfg.Sampling.MaxLeapfrog = 24
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

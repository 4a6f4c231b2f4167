package config

import "time"

// Config is the root configuration structure
type Config struct {
	Input    string         `yaml:"input"`
	Output   string         `yaml:"output"`
	Sampling SamplingConfig `yaml:"sampling"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplingConfig configures the posterior sampler
type SamplingConfig struct {
	FallbackOnly bool     `yaml:"fallback_only"` // Skip sampling entirely, always use the fallback estimator
	Draws        int      `yaml:"draws"`         // Post-warmup samples per chain
	Tune         int      `yaml:"tune"`          // Warmup iterations for step-size adaptation
	Chains       int      `yaml:"chains"`        // Independent chains
	TargetAccept float64  `yaml:"target_accept"` // Target acceptance rate for step-size adaptation
	Seed         uint64   `yaml:"seed"`          // Random seed; chain i uses seed+i
	MaxLeapfrog  int      `yaml:"max_leapfrog"`  // Upper bound on leapfrog steps per proposal
	Timeout      Duration `yaml:"timeout"`       // Per-snapshot wall-clock budget (0 = none)
}

// MetricsConfig configures the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

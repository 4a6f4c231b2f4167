package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if cfg.Input == "" {
		return fmt.Errorf("%w", ErrInputRequired)
	}
	if cfg.Output == "" {
		return fmt.Errorf("%w", ErrOutputRequired)
	}

	if err := validateSamplingConfig(&cfg.Sampling); err != nil {
		return fmt.Errorf("sampling config: %w", err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return fmt.Errorf("%w", ErrMetricsAddrRequired)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateSamplingConfig(cfg *SamplingConfig) error {
	if cfg.Draws <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDraws, cfg.Draws)
	}
	if cfg.Tune < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTune, cfg.Tune)
	}
	if cfg.Chains <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChains, cfg.Chains)
	}
	if cfg.TargetAccept <= 0 || cfg.TargetAccept >= 1 {
		return fmt.Errorf("%w: %g", ErrInvalidTargetAccept, cfg.TargetAccept)
	}
	if cfg.MaxLeapfrog <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxLeapfrog, cfg.MaxLeapfrog)
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	level := strings.ToLower(cfg.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, cfg.Level)
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}

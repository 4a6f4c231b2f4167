package config

import "errors"

var (
	// ErrInputRequired indicates that no input document path was specified.
	ErrInputRequired = errors.New("input path must be specified")
	// ErrOutputRequired indicates that no output document path was specified.
	ErrOutputRequired = errors.New("output path must be specified")
	// ErrInvalidDraws indicates a non-positive draw count.
	ErrInvalidDraws = errors.New("sampling draws must be positive")
	// ErrInvalidTune indicates a negative warmup count.
	ErrInvalidTune = errors.New("sampling tune must not be negative")
	// ErrInvalidChains indicates a non-positive chain count.
	ErrInvalidChains = errors.New("sampling chains must be positive")
	// ErrInvalidTargetAccept indicates a target acceptance rate outside (0, 1).
	ErrInvalidTargetAccept = errors.New("sampling target_accept must be between 0 and 1 exclusive")
	// ErrInvalidMaxLeapfrog indicates a non-positive leapfrog bound.
	ErrInvalidMaxLeapfrog = errors.New("sampling max_leapfrog must be positive")
	// ErrMetricsAddrRequired indicates that metrics are enabled without an address.
	ErrMetricsAddrRequired = errors.New("metrics addr must be specified when metrics are enabled")
	// ErrInvalidLogLevel indicates an unknown logging level.
	ErrInvalidLogLevel = errors.New("invalid logging level")
	// ErrInvalidLogFormat indicates an unknown logging format.
	ErrInvalidLogFormat = errors.New("invalid logging format")
)

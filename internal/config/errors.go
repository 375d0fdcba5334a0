package config

import "errors"

// Validation errors, comparable with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	ErrInvalidConcurrency = errors.New("invalid concurrency: must be zero (no cap) or positive")

	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrUnsupportedVersion is returned for config files written for a newer release.
	ErrUnsupportedVersion = errors.New("unsupported configuration version")
)

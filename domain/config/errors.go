package config

import "errors"

// Domain errors for scenario configuration.
var (
	// ErrScenarioNotFound is returned when a scenario file does not exist.
	ErrScenarioNotFound = errors.New("scenario file not found")

	// ErrInvalidFormat is returned when a scenario file cannot be parsed.
	ErrInvalidFormat = errors.New("invalid scenario format")

	// ErrValidation is returned when a scenario fails validation.
	ErrValidation = errors.New("scenario validation failed")

	// ErrMissingEnvVars is returned when referenced env vars are not set.
	ErrMissingEnvVars = errors.New("missing environment variables")
)

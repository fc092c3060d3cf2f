package agent

import "errors"

// Construction errors.
var (
	// ErrNoTransitionModel is returned when no transition model is configured.
	ErrNoTransitionModel = errors.New("transition model is required")

	// ErrNoSensorModel is returned when no sensor model is configured.
	ErrNoSensorModel = errors.New("sensor model is required")
)

package event

import "errors"

// Domain errors for event store operations.
var (
	// ErrEventNotFound is returned when an event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrEpisodeNotFound is returned when events for an episode do not exist.
	ErrEpisodeNotFound = errors.New("episode not found in event store")

	// ErrSequenceConflict is returned when event sequence numbers conflict.
	ErrSequenceConflict = errors.New("event sequence conflict")

	// ErrInvalidEvent is returned when an event is malformed.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrConnectionFailed is returned when connection to the store backend fails.
	ErrConnectionFailed = errors.New("event store connection failed")
)

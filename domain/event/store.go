package event

import "context"

// Store defines the interface for event persistence.
// Implementations may be in-memory, BadgerDB, or any other backend.
type Store interface {
	// Append persists one or more events atomically.
	// Events are assigned sequence numbers in order of appearance.
	Append(ctx context.Context, events ...Event) error

	// LoadEvents retrieves all events for an episode in sequence order.
	LoadEvents(ctx context.Context, episodeID string) ([]Event, error)

	// LoadEventsFrom retrieves events starting from a specific sequence
	// number. This enables incremental replay from a known checkpoint.
	LoadEventsFrom(ctx context.Context, episodeID string, fromSeq uint64) ([]Event, error)

	// Subscribe returns a channel that receives new events for an episode.
	// The channel is closed when the context is cancelled.
	Subscribe(ctx context.Context, episodeID string) (<-chan Event, error)
}

// Package event provides domain types and interfaces for event sourcing
// of agent episodes.
package event

import (
	"encoding/json"
	"time"
)

// Event represents a domain event in the event store.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// EpisodeID is the ID of the episode this event belongs to.
	EpisodeID string `json:"episode_id"`

	// Type classifies the event.
	Type Type `json:"type"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Payload contains the event-specific data.
	Payload json.RawMessage `json:"payload"`

	// Sequence is the ordering number within the episode's event stream.
	Sequence uint64 `json:"sequence"`

	// Version is the event schema version for forward compatibility.
	Version int `json:"version,omitempty"`
}

// New creates a new event with the given type and payload.
func New(episodeID string, eventType Type, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		EpisodeID: episodeID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   data,
		Version:   1,
	}, nil
}

// UnmarshalPayload decodes the event payload into the given value.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Package memory provides in-memory storage backends.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/reflex-go/domain/event"
)

// EventStore is an in-memory implementation of event.Store.
type EventStore struct {
	events      map[string][]event.Event // episodeID -> events
	subscribers map[string][]chan event.Event
	sequences   map[string]uint64 // episodeID -> last sequence
	mu          sync.RWMutex
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events:      make(map[string][]event.Event),
		subscribers: make(map[string][]chan event.Event),
		sequences:   make(map[string]uint64),
	}
}

// Append persists one or more events atomically.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Group events by episode ID
	byEpisode := make(map[string][]event.Event)
	for _, e := range events {
		byEpisode[e.EpisodeID] = append(byEpisode[e.EpisodeID], e)
	}

	for episodeID, episodeEvents := range byEpisode {
		seq := s.sequences[episodeID]

		for i := range episodeEvents {
			if episodeEvents[i].ID == "" {
				episodeEvents[i].ID = uuid.New().String()
			}

			seq++
			episodeEvents[i].Sequence = seq

			if episodeEvents[i].Type == "" {
				return event.ErrInvalidEvent
			}
		}

		s.events[episodeID] = append(s.events[episodeID], episodeEvents...)
		s.sequences[episodeID] = seq

		if subs, ok := s.subscribers[episodeID]; ok {
			for _, sub := range subs {
				for _, e := range episodeEvents {
					select {
					case sub <- e:
					default:
						// Channel full, skip (non-blocking)
					}
				}
			}
		}
	}

	return nil
}

// LoadEvents retrieves all events for an episode in sequence order.
func (s *EventStore) LoadEvents(ctx context.Context, episodeID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.events[episodeID]
	if !ok {
		return []event.Event{}, nil
	}

	// Return a copy to prevent mutation
	result := make([]event.Event, len(events))
	copy(result, events)
	return result, nil
}

// LoadEventsFrom retrieves events starting from a specific sequence number.
func (s *EventStore) LoadEventsFrom(ctx context.Context, episodeID string, fromSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.events[episodeID]
	if !ok {
		return []event.Event{}, nil
	}

	var result []event.Event
	for _, e := range events {
		if e.Sequence >= fromSeq {
			result = append(result, e)
		}
	}

	return result, nil
}

// Subscribe returns a channel that receives new events for an episode.
func (s *EventStore) Subscribe(ctx context.Context, episodeID string) (<-chan event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan event.Event, 64)

	s.mu.Lock()
	s.subscribers[episodeID] = append(s.subscribers[episodeID], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		subs := s.subscribers[episodeID]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[episodeID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		close(ch)
	}()

	return ch, nil
}

// Clear removes all events from the store.
func (s *EventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]event.Event)
	s.sequences = make(map[string]uint64)
}

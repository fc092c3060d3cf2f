package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/reflex-go/domain/event"
)

// EventStore is a BadgerDB-backed implementation of event.Store.
type EventStore struct {
	db          *badger.DB
	keyPrefix   string
	subscribers map[string][]chan event.Event
	mu          sync.RWMutex
	gcStop      chan struct{}
	gcWg        sync.WaitGroup
}

// NewEventStore creates a new BadgerDB event store with the given
// configuration.
func NewEventStore(cfg Config, opts ...Option) (*EventStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &EventStore{
		db:          db,
		keyPrefix:   cfg.KeyPrefix,
		subscribers: make(map[string][]chan event.Event),
		gcStop:      make(chan struct{}),
	}

	if cfg.GCInterval > 0 {
		s.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}

	return s, nil
}

// NewEventStoreFromDB creates an event store from an existing BadgerDB
// database. The caller retains ownership of the database.
func NewEventStoreFromDB(db *badger.DB, keyPrefix string) *EventStore {
	return &EventStore{
		db:          db,
		keyPrefix:   keyPrefix,
		subscribers: make(map[string][]chan event.Event),
		gcStop:      make(chan struct{}),
	}
}

// startGC starts the value-log garbage collection goroutine.
func (s *EventStore) startGC(interval time.Duration, discardRatio float64) {
	s.gcWg.Add(1)
	go func() {
		defer s.gcWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.gcStop:
				return
			case <-ticker.C:
				// RunValueLogGC returns an error when nothing was
				// collected; that is the common case and not a failure.
				_ = s.db.RunValueLogGC(discardRatio)
			}
		}
	}()
}

// Close stops background work and closes the database.
func (s *EventStore) Close() error {
	close(s.gcStop)
	s.gcWg.Wait()
	return s.db.Close()
}

// Key format: prefix:events:episodeID:sequence (8 bytes, big-endian)
func (s *EventStore) eventKey(episodeID string, seq uint64) []byte {
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	return append([]byte(s.keyPrefix+"events:"+episodeID+":"), seqBytes...)
}

// Key format: prefix:seq:episodeID for storing the sequence counter
func (s *EventStore) seqKey(episodeID string) []byte {
	return []byte(s.keyPrefix + "seq:" + episodeID)
}

// Append persists one or more events atomically.
func (s *EventStore) Append(ctx context.Context, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	// Group events by episode ID
	byEpisode := make(map[string][]event.Event)
	for _, e := range events {
		byEpisode[e.EpisodeID] = append(byEpisode[e.EpisodeID], e)
	}

	var processed []event.Event

	err := s.db.Update(func(txn *badger.Txn) error {
		for episodeID, episodeEvents := range byEpisode {
			var seq uint64
			seqKey := s.seqKey(episodeID)

			item, err := txn.Get(seqKey)
			if err == nil {
				err = item.Value(func(val []byte) error {
					if len(val) == 8 {
						seq = binary.BigEndian.Uint64(val)
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			for i := range episodeEvents {
				e := &episodeEvents[i]

				if e.ID == "" {
					e.ID = uuid.New().String()
				}

				seq++
				e.Sequence = seq

				if e.Type == "" {
					return event.ErrInvalidEvent
				}

				data, err := json.Marshal(e)
				if err != nil {
					return err
				}

				if err := txn.Set(s.eventKey(episodeID, seq), data); err != nil {
					return err
				}

				processed = append(processed, *e)
			}

			seqBytes := make([]byte, 8)
			binary.BigEndian.PutUint64(seqBytes, seq)
			if err := txn.Set(seqKey, seqBytes); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.notifySubscribers(processed)

	return nil
}

// LoadEvents retrieves all events for an episode in sequence order.
func (s *EventStore) LoadEvents(ctx context.Context, episodeID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(s.keyPrefix + "events:" + episodeID + ":")
	var events []event.Event

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var e event.Event
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				continue // Skip malformed entries
			}

			events = append(events, e)
		}

		return nil
	})

	return events, err
}

// LoadEventsFrom retrieves events starting from a specific sequence number.
func (s *EventStore) LoadEventsFrom(ctx context.Context, episodeID string, fromSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startKey := s.eventKey(episodeID, fromSeq)
	prefix := []byte(s.keyPrefix + "events:" + episodeID + ":")
	var events []event.Event

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(startKey); it.Valid(); it.Next() {
			item := it.Item()

			var e event.Event
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				continue
			}

			events = append(events, e)
		}

		return nil
	})

	return events, err
}

// Subscribe returns a channel that receives new events for an episode.
func (s *EventStore) Subscribe(ctx context.Context, episodeID string) (<-chan event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ch := make(chan event.Event, 100)
	s.subscribers[episodeID] = append(s.subscribers[episodeID], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.unsubscribe(episodeID, ch)
	}()

	return ch, nil
}

// unsubscribe removes a subscriber channel.
func (s *EventStore) unsubscribe(episodeID string, ch chan event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.subscribers[episodeID]
	for i, sub := range subs {
		if sub == ch {
			s.subscribers[episodeID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(s.subscribers[episodeID]) == 0 {
		delete(s.subscribers, episodeID)
	}
}

// notifySubscribers sends events to subscribers.
func (s *EventStore) notifySubscribers(events []event.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range events {
		subs, ok := s.subscribers[e.EpisodeID]
		if !ok {
			continue
		}

		for _, ch := range subs {
			select {
			case ch <- e:
			default:
				// Channel full, skip
			}
		}
	}
}

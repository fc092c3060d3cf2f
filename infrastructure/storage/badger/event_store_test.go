package badger

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/reflex-go/domain/event"
)

func newTestStore(t *testing.T) *EventStore {
	t.Helper()

	store, err := NewEventStore(DefaultConfig(), WithInMemory())
	if err != nil {
		t.Fatalf("NewEventStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestEvent(t *testing.T, episodeID string, eventType event.Type) event.Event {
	t.Helper()

	e, err := event.New(episodeID, eventType, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	return e
}

func TestEventStoreAppendAndLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	events := []event.Event{
		newTestEvent(t, "ep-1", event.TypeEpisodeStarted),
		newTestEvent(t, "ep-1", event.TypePerceptReceived),
		newTestEvent(t, "ep-1", event.TypeBeliefRevised),
	}
	if err := store.Append(ctx, events...); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	loaded, err := store.LoadEvents(ctx, "ep-1")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("LoadEvents() returned %d events, want 3", len(loaded))
	}

	for i, e := range loaded {
		if e.Sequence != uint64(i+1) {
			t.Errorf("event %d: sequence = %d, want %d", i, e.Sequence, i+1)
		}
		if e.ID == "" {
			t.Errorf("event %d: missing generated ID", i)
		}
		if e.Type != events[i].Type {
			t.Errorf("event %d: type = %q, want %q", i, e.Type, events[i].Type)
		}
	}
}

func TestEventStoreSequenceContinuesAcrossAppends(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, newTestEvent(t, "ep-1", event.TypeEpisodeStarted)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, newTestEvent(t, "ep-1", event.TypePerceptReceived)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	loaded, err := store.LoadEvents(ctx, "ep-1")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(loaded) != 2 || loaded[1].Sequence != 2 {
		t.Errorf("second append sequence = %d, want 2", loaded[len(loaded)-1].Sequence)
	}
}

func TestEventStoreAppendRejectsUntypedEvent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.Append(context.Background(), event.Event{EpisodeID: "ep-1"})
	if err != event.ErrInvalidEvent {
		t.Errorf("Append() error = %v, want ErrInvalidEvent", err)
	}

	// The failed transaction must not have written anything.
	loaded, err := store.LoadEvents(context.Background(), "ep-1")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("LoadEvents() after failed append returned %d events, want 0", len(loaded))
	}
}

func TestEventStoreLoadEventsFrom(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, newTestEvent(t, "ep-1", event.TypeActionSelected)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	loaded, err := store.LoadEventsFrom(ctx, "ep-1", 4)
	if err != nil {
		t.Fatalf("LoadEventsFrom() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadEventsFrom(4) returned %d events, want 2", len(loaded))
	}
	if loaded[0].Sequence != 4 || loaded[1].Sequence != 5 {
		t.Errorf("sequences = %d, %d, want 4, 5", loaded[0].Sequence, loaded[1].Sequence)
	}
}

func TestEventStoreSubscribe(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Subscribe(ctx, "ep-1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Append(context.Background(), newTestEvent(t, "ep-1", event.TypeEpisodeCompleted)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	select {
	case e := <-ch:
		if e.Type != event.TypeEpisodeCompleted {
			t.Errorf("received type = %q, want episode.completed", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}
}

func TestEventStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewEventStore(DefaultConfig(), WithDir(dir))
	if err != nil {
		t.Fatalf("NewEventStore() error = %v", err)
	}
	if err := store.Append(ctx, newTestEvent(t, "ep-1", event.TypeEpisodeStarted)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewEventStore(DefaultConfig(), WithDir(dir))
	if err != nil {
		t.Fatalf("NewEventStore() reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadEvents(ctx, "ep-1")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("LoadEvents() after reopen returned %d events, want 1", len(loaded))
	}
}

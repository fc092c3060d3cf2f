package application

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	"github.com/felixgeelhaar/reflex-go/domain/event"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/reflex-go/pack/vacuum"
)

func newVacuumSession(t *testing.T, opts ...Option) (*Session[vacuum.State, vacuum.Percept, vacuum.Action], *memory.EventStore) {
	t.Helper()

	robot, err := vacuum.NewAgent()
	if err != nil {
		t.Fatalf("vacuum.NewAgent() error = %v", err)
	}

	events := memory.NewEventStore()
	opts = append([]Option{
		WithWorld("vacuum"),
		WithEventStore(events),
	}, opts...)

	session, err := NewSession(robot, opts...)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return session, events
}

func TestNewSessionRequiresAgent(t *testing.T) {
	t.Parallel()

	if _, err := NewSession[vacuum.State, vacuum.Percept, vacuum.Action](nil); err == nil {
		t.Error("NewSession(nil) should fail")
	}
}

func TestSessionRunCompletesEpisode(t *testing.T) {
	t.Parallel()

	session, _ := newVacuumSession(t)

	ep, err := session.Run(context.Background(), vacuum.DemoPercepts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ep.Status != episode.StatusCompleted {
		t.Errorf("Status = %q, want completed", ep.Status)
	}
	if len(ep.Steps) != 5 {
		t.Fatalf("Steps = %d, want 5", len(ep.Steps))
	}

	wantActions := []string{`"SUCK"`, `"RIGHT"`, `"SUCK"`, `"LEFT"`, `"RIGHT"`}
	for i, want := range wantActions {
		if got := string(ep.Steps[i].Action); got != want {
			t.Errorf("step %d: action = %s, want %s", i+1, got, want)
		}
	}

	var final vacuum.State
	if err := json.Unmarshal(ep.FinalBelief, &final); err != nil {
		t.Fatalf("final belief unmarshal error = %v", err)
	}
	want := vacuum.State{Loc: "A", Dirty: map[string]bool{"A": false, "B": false}}
	if !reflect.DeepEqual(final, want) {
		t.Errorf("final belief = %+v, want %+v", final, want)
	}
}

func TestSessionJournalsEveryStep(t *testing.T) {
	t.Parallel()

	session, events := newVacuumSession(t)
	ctx := context.Background()

	ep, err := session.Run(ctx, vacuum.DemoPercepts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	journal, err := events.LoadEvents(ctx, ep.ID)
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}

	// 1 started + 5 * (percept, belief, action) + 1 completed
	if len(journal) != 17 {
		t.Fatalf("journal has %d events, want 17", len(journal))
	}

	if journal[0].Type != event.TypeEpisodeStarted {
		t.Errorf("first event type = %q, want episode.started", journal[0].Type)
	}
	if journal[len(journal)-1].Type != event.TypeEpisodeCompleted {
		t.Errorf("last event type = %q, want episode.completed", journal[len(journal)-1].Type)
	}

	// Each step journals percept, belief, action in that order.
	for step := 0; step < 5; step++ {
		base := 1 + step*3
		wantTypes := []event.Type{
			event.TypePerceptReceived,
			event.TypeBeliefRevised,
			event.TypeActionSelected,
		}
		for j, want := range wantTypes {
			if journal[base+j].Type != want {
				t.Errorf("event %d: type = %q, want %q", base+j, journal[base+j].Type, want)
			}
		}
	}
}

func TestSessionStepReportsNoOp(t *testing.T) {
	t.Parallel()

	t.Run("matched action", func(t *testing.T) {
		t.Parallel()

		session, events := newVacuumSession(t)
		ctx := context.Background()

		if _, err := session.Step(ctx, vacuum.Percept{Loc: "A", Dirty: true}); err != nil {
			t.Fatalf("Step() error = %v", err)
		}

		p := lastActionPayload(t, events, session.Episode().ID)
		if p.NoOp {
			t.Error("NoOp = true for a matched action, want false")
		}
		if string(p.Action) != `"SUCK"` {
			t.Errorf("action = %s, want \"SUCK\"", p.Action)
		}
	})

	t.Run("no rule matches", func(t *testing.T) {
		t.Parallel()

		// An agent with no rules always falls through to the no-op.
		robot, err := agent.New(agent.Config[vacuum.State, vacuum.Percept, vacuum.Action]{
			Transition:   vacuum.Transition,
			Sensor:       vacuum.Sensor,
			InitialState: vacuum.InitialState(),
			NoOp:         vacuum.ActionNoOp,
		})
		if err != nil {
			t.Fatalf("agent.New() error = %v", err)
		}

		events := memory.NewEventStore()
		session, err := NewSession(robot, WithWorld("vacuum"), WithEventStore(events))
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}

		if _, err := session.Step(context.Background(), vacuum.Percept{Loc: "A", Dirty: true}); err != nil {
			t.Fatalf("Step() error = %v", err)
		}

		p := lastActionPayload(t, events, session.Episode().ID)
		if !p.NoOp {
			t.Error("NoOp = false when no rule matched, want true")
		}
		if string(p.Action) != `"NO-OP"` {
			t.Errorf("action = %s, want \"NO-OP\"", p.Action)
		}
	})
}

// lastActionPayload returns the payload of the most recent
// action.selected event for the episode.
func lastActionPayload(t *testing.T, events *memory.EventStore, episodeID string) event.ActionSelectedPayload {
	t.Helper()

	journal, err := events.LoadEvents(context.Background(), episodeID)
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}

	var selected *event.ActionSelectedPayload
	for _, e := range journal {
		if e.Type == event.TypeActionSelected {
			var p event.ActionSelectedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				t.Fatalf("UnmarshalPayload() error = %v", err)
			}
			selected = &p
		}
	}
	if selected == nil {
		t.Fatal("no action.selected event journaled")
	}
	return *selected
}

func TestSessionPersistsEpisode(t *testing.T) {
	t.Parallel()

	episodes := memory.NewEpisodeStore()
	session, _ := newVacuumSession(t, WithEpisodeStore(episodes), WithEpisodeID("ep-under-test"))
	ctx := context.Background()

	if _, err := session.Run(ctx, vacuum.DemoPercepts()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stored, err := episodes.Get(ctx, "ep-under-test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != episode.StatusCompleted {
		t.Errorf("stored status = %q, want completed", stored.Status)
	}
	if len(stored.Steps) != 5 {
		t.Errorf("stored steps = %d, want 5", len(stored.Steps))
	}
}

func TestSessionRunCancelledContext(t *testing.T) {
	t.Parallel()

	session, _ := newVacuumSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := session.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	cancel()

	_, err := session.Run(ctx, vacuum.DemoPercepts())
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if session.Episode().Status != episode.StatusFailed {
		t.Errorf("episode status = %q, want failed", session.Episode().Status)
	}
}

func TestSessionFail(t *testing.T) {
	t.Parallel()

	session, events := newVacuumSession(t)
	ctx := context.Background()

	if err := session.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := session.Fail(ctx, context.DeadlineExceeded); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	if session.Episode().Status != episode.StatusFailed {
		t.Errorf("status = %q, want failed", session.Episode().Status)
	}

	journal, err := events.LoadEvents(ctx, session.Episode().ID)
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	last := journal[len(journal)-1]
	if last.Type != event.TypeEpisodeFailed {
		t.Fatalf("last event type = %q, want episode.failed", last.Type)
	}

	var p event.EpisodeFailedPayload
	if err := last.UnmarshalPayload(&p); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if p.Error != context.DeadlineExceeded.Error() {
		t.Errorf("failure reason = %q", p.Error)
	}
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	"github.com/felixgeelhaar/reflex-go/domain/event"
)

// Replay reconstructs episodes from their event journal.
type Replay struct {
	events event.Store
}

// NewReplay creates a replay service over an event store.
func NewReplay(store event.Store) (*Replay, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	return &Replay{events: store}, nil
}

// ReconstructEpisode rebuilds an episode record purely from its journal.
// The result carries the same steps, status, and final belief the live
// session recorded.
func (r *Replay) ReconstructEpisode(ctx context.Context, episodeID string) (*episode.Episode, error) {
	events, err := r.events.LoadEvents(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", event.ErrEpisodeNotFound, episodeID)
	}

	ep := episode.New(episodeID, "")

	// Step assembly: each step is a percept.received / belief.revised /
	// action.selected triple sharing a step index.
	steps := map[int]*episode.Step{}
	maxStep := -1

	stepFor := func(index int) *episode.Step {
		if s, ok := steps[index]; ok {
			return s
		}
		s := &episode.Step{Index: index}
		steps[index] = s
		if index > maxStep {
			maxStep = index
		}
		return s
	}

	for _, e := range events {
		switch e.Type {
		case event.TypeEpisodeStarted:
			var p event.EpisodeStartedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			ep.World = p.World
			ep.Start()
			ep.StartTime = e.Timestamp

		case event.TypePerceptReceived:
			var p event.PerceptReceivedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			s := stepFor(p.Step)
			s.Percept = p.Percept
			s.Timestamp = e.Timestamp

		case event.TypeBeliefRevised:
			var p event.BeliefRevisedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			stepFor(p.Step).Belief = p.Belief

		case event.TypeActionSelected:
			var p event.ActionSelectedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			s := stepFor(p.Step)
			s.Action = p.Action
			s.Duration = p.Duration

		case event.TypeEpisodeCompleted:
			var p event.EpisodeCompletedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			ep.Complete(p.FinalBelief)
			ep.EndTime = e.Timestamp

		case event.TypeEpisodeFailed:
			var p event.EpisodeFailedPayload
			if err := e.UnmarshalPayload(&p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", e.Type, err)
			}
			ep.Fail(p.Error)
			ep.EndTime = e.Timestamp
		}
	}

	for i := 0; i <= maxStep; i++ {
		if s, ok := steps[i]; ok {
			ep.Steps = append(ep.Steps, *s)
		}
	}

	return ep, nil
}

// InitialBelief returns the initial belief recorded in the episode's
// episode.started event, so a verifying agent can be seeded identically.
func (r *Replay) InitialBelief(ctx context.Context, episodeID string) (json.RawMessage, error) {
	events, err := r.events.LoadEvents(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	for _, e := range events {
		if e.Type != event.TypeEpisodeStarted {
			continue
		}
		var p event.EpisodeStartedPayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Type, err)
		}
		return p.InitialBelief, nil
	}

	return nil, fmt.Errorf("%w: %s has no start event", event.ErrEpisodeNotFound, episodeID)
}

// Divergence reports the first step at which a replayed agent disagreed
// with the recorded journal.
type Divergence struct {
	Step     int
	Field    string // "belief" or "action"
	Recorded json.RawMessage
	Replayed json.RawMessage
}

func (d *Divergence) String() string {
	return fmt.Sprintf("step %d %s: recorded %s, replayed %s",
		d.Step, d.Field, d.Recorded, d.Replayed)
}

// Verify feeds the recorded percepts of an episode into a fresh agent
// and checks each resulting belief and action against the journal. A
// nil Divergence means the run reproduced exactly, which a
// deterministic agent configuration guarantees.
//
// The fresh agent must be configured identically to the recorded one
// and must not have perceived anything yet.
func Verify[S, P, A any](ctx context.Context, r *Replay, episodeID string, fresh *agent.Agent[S, P, A]) (*Divergence, error) {
	ep, err := r.ReconstructEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	for _, step := range ep.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var percept P
		if err := json.Unmarshal(step.Percept, &percept); err != nil {
			return nil, fmt.Errorf("decode percept at step %d: %w", step.Index, err)
		}

		action := fresh.Perceive(percept)

		beliefJSON, err := json.Marshal(fresh.State())
		if err != nil {
			return nil, fmt.Errorf("marshal belief at step %d: %w", step.Index, err)
		}
		if !jsonEqual(beliefJSON, step.Belief) {
			return &Divergence{
				Step:     step.Index,
				Field:    "belief",
				Recorded: step.Belief,
				Replayed: beliefJSON,
			}, nil
		}

		actionJSON, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("marshal action at step %d: %w", step.Index, err)
		}
		if !jsonEqual(actionJSON, step.Action) {
			return &Divergence{
				Step:     step.Index,
				Field:    "action",
				Recorded: step.Action,
				Replayed: actionJSON,
			}, nil
		}
	}

	return nil, nil
}

// jsonEqual compares two JSON documents structurally, so key order and
// whitespace differences do not count as divergence.
func jsonEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// WaitForEvents blocks until at least n events exist for the episode or
// the context expires. Useful when the journal is written by another
// process over a shared store.
func (r *Replay) WaitForEvents(ctx context.Context, episodeID string, n int) ([]event.Event, error) {
	for {
		events, err := r.events.LoadEvents(ctx, episodeID)
		if err != nil && !errors.Is(err, event.ErrEpisodeNotFound) {
			return nil, err
		}
		if len(events) >= n {
			return events, nil
		}

		select {
		case <-ctx.Done():
			return events, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

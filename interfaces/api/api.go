// Package api provides the public API for the reflex-go runtime.
//
// reflex-go is a model-based reflex agent runtime: an agent keeps a
// belief state, revises it on every percept through a transition model
// and a sensor model, and selects its action from an ordered list of
// condition-action rules.
//
// # Quick Start
//
// Build an agent over your own state, percept, and action types:
//
//	agent, err := api.NewAgentBuilder[State, Percept, Action]().
//	    WithTransitionModel(transition).
//	    WithSensorModel(sensor).
//	    WithRule(isDirty, Suck).
//	    WithRule(atLeft, Right).
//	    WithInitialState(initial).
//	    WithNoOp(Wait).
//	    Build()
//
//	action := agent.Perceive(percept)
//
// Rules are tried in the order they were added; the first rule whose
// condition holds on the revised belief supplies the action. When no
// rule matches, the agent returns its no-op action.
//
// # Sessions
//
// A Session wraps an agent with episode lifecycle, event journaling,
// and persistence:
//
//	session, err := api.NewSession(agent,
//	    api.WithWorld("vacuum"),
//	    api.WithEventStore(api.NewEventStore()),
//	)
//	episode, err := session.Run(ctx, percepts)
//
// Every journaled episode can later be reconstructed and verified
// against a fresh agent with a Replay.
package api

import (
	"context"

	"github.com/felixgeelhaar/reflex-go/application"
	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/belief"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	"github.com/felixgeelhaar/reflex-go/domain/event"
	"github.com/felixgeelhaar/reflex-go/domain/rule"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/memory"
)

// Core types re-exported from the domain layer.
type (
	// Agent is a model-based reflex agent over state S, percept P, and
	// action A.
	Agent[S, P, A any] = agent.Agent[S, P, A]

	// Rule pairs a condition over the belief state with the action to
	// take when it holds.
	Rule[S, A any] = rule.Rule[S, A]

	// Condition is a predicate over the belief state.
	Condition[S any] = rule.Condition[S]

	// TransitionModel predicts the next state from the current state
	// and the last action taken.
	TransitionModel[S, A any] = belief.TransitionModel[S, A]

	// SensorModel corrects a predicted state with the current percept.
	SensorModel[S, P any] = belief.SensorModel[S, P]

	// Episode is the recorded result of a session run.
	Episode = episode.Episode

	// Event is one journaled occurrence within an episode.
	Event = event.Event
)

// Session re-exports.
type (
	// Session drives an agent through an episode.
	Session[S, P, A any] = application.Session[S, P, A]

	// Replay reconstructs episodes from their event journals.
	Replay = application.Replay

	// SessionOption configures a session.
	SessionOption = application.Option
)

// Session option constructors.
var (
	WithWorld        = application.WithWorld
	WithEventStore   = application.WithEventStore
	WithEpisodeStore = application.WithEpisodeStore
	WithEpisodeID    = application.WithEpisodeID
)

// NewSession creates a session around the agent.
func NewSession[S, P, A any](a *Agent[S, P, A], opts ...SessionOption) (*Session[S, P, A], error) {
	return application.NewSession(a, opts...)
}

// NewReplay creates a replay service over the event store.
func NewReplay(events event.Store) (*Replay, error) {
	return application.NewReplay(events)
}

// Verify replays a recorded episode into a fresh agent and reports the
// first divergence, if any.
func Verify[S, P, A any](ctx context.Context, r *Replay, episodeID string, fresh *Agent[S, P, A]) (*application.Divergence, error) {
	return application.Verify(ctx, r, episodeID, fresh)
}

// NewEventStore creates an in-memory event store.
func NewEventStore() *memory.EventStore {
	return memory.NewEventStore()
}

// NewEpisodeStore creates an in-memory episode store.
func NewEpisodeStore() *memory.EpisodeStore {
	return memory.NewEpisodeStore()
}

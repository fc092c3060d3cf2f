// Package application provides the application layer for driving reflex
// agents: recorded sessions, event journaling, and replay.
package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	"github.com/felixgeelhaar/reflex-go/domain/event"
	"github.com/felixgeelhaar/reflex-go/infrastructure/logging"
	"github.com/felixgeelhaar/reflex-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/memory"
)

// Session drives a reflex agent over a percept stream while journaling
// every step as domain events and an episode record.
//
// The session adds recording, persistence, and telemetry around the
// core perceive loop; it never alters the loop's semantics. In
// particular it does not recover panics from the agent's collaborators:
// a contract-violating model terminates the step exactly as it would
// without a session.
//
// Like the agent it wraps, a Session is not safe for concurrent use.
type Session[S, P, A any] struct {
	agent    *agent.Agent[S, P, A]
	world    string
	events   event.Store
	episodes episode.Store

	ep      *episode.Episode
	machine *statemachine.Interpreter

	tracer    trace.Tracer
	stepCount metric.Int64Counter
	noopCount metric.Int64Counter
	stepTime  metric.Float64Histogram

	started bool
}

// SessionConfig contains configuration for a session.
type SessionConfig struct {
	// World names the domain instantiation, for episode records and logs.
	World string

	// EventStore receives the event journal. Defaults to an in-memory
	// store when nil.
	EventStore event.Store

	// EpisodeStore persists episode snapshots. Optional; when nil the
	// episode lives only on the session.
	EpisodeStore episode.Store

	// EpisodeID overrides the generated episode ID.
	EpisodeID string
}

// Option configures a session.
type Option func(*SessionConfig)

// WithWorld sets the world name.
func WithWorld(name string) Option {
	return func(c *SessionConfig) {
		c.World = name
	}
}

// WithEventStore sets the event store.
func WithEventStore(store event.Store) Option {
	return func(c *SessionConfig) {
		c.EventStore = store
	}
}

// WithEpisodeStore sets the episode store.
func WithEpisodeStore(store episode.Store) Option {
	return func(c *SessionConfig) {
		c.EpisodeStore = store
	}
}

// WithEpisodeID sets an explicit episode ID.
func WithEpisodeID(id string) Option {
	return func(c *SessionConfig) {
		c.EpisodeID = id
	}
}

// NewSession creates a session around an agent.
func NewSession[S, P, A any](a *agent.Agent[S, P, A], opts ...Option) (*Session[S, P, A], error) {
	if a == nil {
		return nil, errors.New("agent is required")
	}

	cfg := SessionConfig{World: "unnamed"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.EventStore == nil {
		cfg.EventStore = memory.NewEventStore()
	}
	if cfg.EpisodeID == "" {
		cfg.EpisodeID = generateEpisodeID()
	}

	ep := episode.New(cfg.EpisodeID, cfg.World)

	machineConfig, err := statemachine.NewEpisodeMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle machine: %w", err)
	}
	machine := statemachine.NewInterpreter(machineConfig, statemachine.NewContext(ep))
	machine.Start()

	meter := otel.Meter("reflex-go/application")

	stepCount, err := meter.Int64Counter("reflex.steps",
		metric.WithDescription("Perceive cycles executed"))
	if err != nil {
		return nil, err
	}
	noopCount, err := meter.Int64Counter("reflex.noops",
		metric.WithDescription("Steps that fell through to the no-op action"))
	if err != nil {
		return nil, err
	}
	stepTime, err := meter.Float64Histogram("reflex.step.duration",
		metric.WithDescription("Perceive cycle duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Session[S, P, A]{
		agent:     a,
		world:     cfg.World,
		events:    cfg.EventStore,
		episodes:  cfg.EpisodeStore,
		ep:        ep,
		machine:   machine,
		tracer:    otel.Tracer("reflex-go/application"),
		stepCount: stepCount,
		noopCount: noopCount,
		stepTime:  stepTime,
	}, nil
}

// Begin starts the episode: transitions the lifecycle machine to
// running, journals episode.started, and saves the initial episode
// snapshot. Step calls Begin implicitly; calling it explicitly lets the
// caller handle startup errors separately.
func (s *Session[S, P, A]) Begin(ctx context.Context) error {
	if s.started {
		return nil
	}

	s.machine.Begin()
	s.started = true

	initialBelief, err := json.Marshal(s.agent.State())
	if err != nil {
		return fmt.Errorf("marshal initial belief: %w", err)
	}
	noOp, err := json.Marshal(s.agent.NoOp())
	if err != nil {
		return fmt.Errorf("marshal no-op: %w", err)
	}

	e, err := event.New(s.ep.ID, event.TypeEpisodeStarted, event.EpisodeStartedPayload{
		World:         s.world,
		InitialBelief: initialBelief,
		NoOp:          noOp,
	})
	if err != nil {
		return err
	}
	if err := s.events.Append(ctx, e); err != nil {
		return fmt.Errorf("append episode.started: %w", err)
	}

	if s.episodes != nil {
		if err := s.episodes.Save(ctx, s.ep); err != nil {
			return fmt.Errorf("save episode: %w", err)
		}
	}

	logging.Info().
		Add(logging.EpisodeID(s.ep.ID)).
		Add(logging.World(s.world)).
		Msg("episode started")

	return nil
}

// Step feeds one percept to the agent and journals the resulting
// belief revision and action selection. The returned error covers
// journaling and persistence only; collaborator contract violations
// panic through unchanged.
func (s *Session[S, P, A]) Step(ctx context.Context, percept P) (A, error) {
	var zero A

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if !s.started {
		if err := s.Begin(ctx); err != nil {
			return zero, err
		}
	}

	index := len(s.ep.Steps)

	ctx, span := s.tracer.Start(ctx, "session.step", trace.WithAttributes(
		attribute.String("episode.id", s.ep.ID),
		attribute.String("world", s.world),
		attribute.Int("step", index),
	))
	defer span.End()

	perceptJSON, err := json.Marshal(percept)
	if err != nil {
		return zero, fmt.Errorf("marshal percept: %w", err)
	}

	perceptEvent, err := event.New(s.ep.ID, event.TypePerceptReceived, event.PerceptReceivedPayload{
		Step:    index,
		Percept: perceptJSON,
	})
	if err != nil {
		return zero, err
	}

	start := time.Now()
	action := s.agent.Perceive(percept)
	elapsed := time.Since(start)

	beliefJSON, err := json.Marshal(s.agent.State())
	if err != nil {
		return zero, fmt.Errorf("marshal belief: %w", err)
	}
	actionJSON, err := json.Marshal(action)
	if err != nil {
		return zero, fmt.Errorf("marshal action: %w", err)
	}

	isNoOp := reflect.DeepEqual(action, s.agent.NoOp())

	beliefEvent, err := event.New(s.ep.ID, event.TypeBeliefRevised, event.BeliefRevisedPayload{
		Step:   index,
		Belief: beliefJSON,
	})
	if err != nil {
		return zero, err
	}
	actionEvent, err := event.New(s.ep.ID, event.TypeActionSelected, event.ActionSelectedPayload{
		Step:     index,
		Action:   actionJSON,
		NoOp:     isNoOp,
		Duration: elapsed,
	})
	if err != nil {
		return zero, err
	}

	if err := s.events.Append(ctx, perceptEvent, beliefEvent, actionEvent); err != nil {
		return zero, fmt.Errorf("append step events: %w", err)
	}

	s.ep.AddStep(episode.Step{
		Index:     index,
		Percept:   perceptJSON,
		Belief:    beliefJSON,
		Action:    actionJSON,
		Timestamp: start,
		Duration:  elapsed,
	})

	if s.episodes != nil {
		if err := s.episodes.Update(ctx, s.ep); err != nil {
			return zero, fmt.Errorf("update episode: %w", err)
		}
	}

	s.stepCount.Add(ctx, 1)
	if isNoOp {
		s.noopCount.Add(ctx, 1)
	}
	s.stepTime.Record(ctx, float64(elapsed.Microseconds())/1000.0)

	logging.Debug().
		Add(logging.EpisodeID(s.ep.ID)).
		Add(logging.Step(index)).
		Add(logging.Action(string(actionJSON))).
		Add(logging.DurationNs(elapsed)).
		Msg("step")

	return action, nil
}

// End completes the episode and journals episode.completed with the
// final belief.
func (s *Session[S, P, A]) End(ctx context.Context) (*episode.Episode, error) {
	finalBelief, err := json.Marshal(s.agent.State())
	if err != nil {
		return nil, fmt.Errorf("marshal final belief: %w", err)
	}

	s.ep.FinalBelief = finalBelief
	s.machine.Complete()

	e, err := event.New(s.ep.ID, event.TypeEpisodeCompleted, event.EpisodeCompletedPayload{
		FinalBelief: finalBelief,
		Steps:       len(s.ep.Steps),
		Duration:    s.ep.Duration(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("append episode.completed: %w", err)
	}

	if s.episodes != nil {
		if err := s.episodes.Update(ctx, s.ep); err != nil {
			return nil, fmt.Errorf("update episode: %w", err)
		}
	}

	logging.Info().
		Add(logging.EpisodeID(s.ep.ID)).
		Add(logging.Steps(len(s.ep.Steps))).
		Add(logging.Duration(s.ep.Duration())).
		Msg("episode completed")

	return s.ep, nil
}

// Fail marks the episode as failed and journals episode.failed.
func (s *Session[S, P, A]) Fail(ctx context.Context, cause error) error {
	reason := "unknown failure"
	if cause != nil {
		reason = cause.Error()
	}

	s.machine.Fail(reason)

	e, err := event.New(s.ep.ID, event.TypeEpisodeFailed, event.EpisodeFailedPayload{
		Error:    reason,
		Step:     len(s.ep.Steps),
		Duration: s.ep.Duration(),
	})
	if err != nil {
		return err
	}
	if err := s.events.Append(ctx, e); err != nil {
		return fmt.Errorf("append episode.failed: %w", err)
	}

	if s.episodes != nil {
		if err := s.episodes.Update(ctx, s.ep); err != nil {
			return fmt.Errorf("update episode: %w", err)
		}
	}

	logging.Error().
		Add(logging.EpisodeID(s.ep.ID)).
		Add(logging.ErrorField(cause)).
		Msg("episode failed")

	return nil
}

// Run drives the agent over a full percept sequence and completes the
// episode. On a journaling error the episode is failed and the error
// returned.
func (s *Session[S, P, A]) Run(ctx context.Context, percepts []P) (*episode.Episode, error) {
	if err := s.Begin(ctx); err != nil {
		return nil, err
	}

	for _, p := range percepts {
		select {
		case <-ctx.Done():
			_ = s.Fail(context.WithoutCancel(ctx), ctx.Err())
			return s.ep, ctx.Err()
		default:
		}

		if _, err := s.Step(ctx, p); err != nil {
			_ = s.Fail(context.WithoutCancel(ctx), err)
			return s.ep, err
		}
	}

	return s.End(ctx)
}

// Episode returns the episode being recorded.
func (s *Session[S, P, A]) Episode() *episode.Episode {
	return s.ep
}

// Agent returns the wrapped agent.
func (s *Session[S, P, A]) Agent() *agent.Agent[S, P, A] {
	return s.agent
}

// generateEpisodeID creates a unique episode ID using timestamp and
// random bytes.
func generateEpisodeID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("ep-%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}

// Package agent provides the model-based reflex agent core.
//
// The agent maintains a belief state across discrete time steps. On each
// percept it runs one predict/correct update through its transition and
// sensor models, then selects an action by first-match over an ordered
// rule list. The three type parameters are the belief state S, the
// percept P, and the action A; their shapes are contracts between the
// domain instantiation's models, rules, and environment - the core never
// looks inside them.
package agent

import (
	"github.com/felixgeelhaar/reflex-go/domain/belief"
	"github.com/felixgeelhaar/reflex-go/domain/rule"
)

// Agent is a model-based reflex agent. It owns its belief state and the
// last action taken; models and rules are referenced, not owned.
//
// An Agent is not safe for concurrent use. Perceive runs to completion
// without blocking, so the intended pattern is one Agent per control
// loop; callers sharing an Agent across goroutines must serialize access
// themselves.
type Agent[S, P, A any] struct {
	transition belief.TransitionModel[S, A]
	sensor     belief.SensorModel[S, P]
	rules      []rule.Rule[S, A]
	state      S
	lastAction A
	noOp       A
}

// Config contains the collaborators and initial conditions for an agent.
type Config[S, P, A any] struct {
	// Transition predicts the next belief from the prior belief and the
	// last action. Required.
	Transition belief.TransitionModel[S, A]

	// Sensor fuses a percept into a predicted belief. Required.
	Sensor belief.SensorModel[S, P]

	// Rules is the ordered condition-action list. Order is priority:
	// the first rule whose condition holds wins. May be empty, in which
	// case every percept yields NoOp.
	Rules []rule.Rule[S, A]

	// InitialState seeds the belief. Defaults to the zero value of S;
	// the sensor model is expected to fill in belief from percepts.
	InitialState S

	// NoOp is the action returned when no rule matches. It is also the
	// agent's last action before the first percept.
	NoOp A
}

// New creates an agent from the given configuration.
func New[S, P, A any](config Config[S, P, A]) (*Agent[S, P, A], error) {
	if config.Transition == nil {
		return nil, ErrNoTransitionModel
	}
	if config.Sensor == nil {
		return nil, ErrNoSensorModel
	}

	return &Agent[S, P, A]{
		transition: config.Transition,
		sensor:     config.Sensor,
		rules:      config.Rules,
		state:      config.InitialState,
		lastAction: config.NoOp,
		noOp:       config.NoOp,
	}, nil
}

// Perceive runs one full cycle: update belief from the percept, select
// an action, record it as the last action, and return it.
//
// The belief is replaced wholesale with the updated state; the agent
// never mutates a belief in place. The update is computed completely
// before anything is committed, so a panicking model escapes Perceive
// with both the belief and the last action unchanged - belief commits
// atomically on success.
//
// Given the same percept sequence and deterministic collaborators, the
// returned action sequence is fully reproducible.
func (a *Agent[S, P, A]) Perceive(percept P) A {
	next := belief.Update(a.state, a.lastAction, percept, a.transition, a.sensor)

	action := a.noOp
	if r, ok := rule.Match(next, a.rules); ok {
		action = r.Action
	}

	a.state = next
	a.lastAction = action
	return action
}

// State returns the current belief state.
func (a *Agent[S, P, A]) State() S {
	return a.state
}

// LastAction returns the most recently selected action, or the no-op if
// no percept has been processed yet.
func (a *Agent[S, P, A]) LastAction() A {
	return a.lastAction
}

// NoOp returns the configured no-op action.
func (a *Agent[S, P, A]) NoOp() A {
	return a.noOp
}

// Package vacuum provides the two-square vacuum world, the canonical
// instantiation of the model-based reflex agent.
//
// The world has two locations, A and B, each of which may be dirty. The
// robot perceives its own location and whether that square is dirty,
// and acts by sucking or moving. Dirt in the belief state changes only
// through percepts: the transition model predicts movement, and the
// sensor overwrites the dirt flag for the square the robot actually
// observes.
package vacuum

import (
	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/rule"
)

// Locations of the two-square world.
const (
	LocA = "A"
	LocB = "B"
)

// Action is a vacuum robot command.
type Action string

const (
	ActionSuck  Action = "SUCK"
	ActionLeft  Action = "LEFT"
	ActionRight Action = "RIGHT"
	ActionNoOp  Action = "NO-OP"
)

// State is the robot's belief about the world: where it is and which
// squares it believes are dirty.
type State struct {
	Loc   string          `json:"loc"`
	Dirty map[string]bool `json:"dirty"`
}

// Percept is one observation: the robot's actual location and whether
// that square is dirty.
type Percept struct {
	Loc   string `json:"loc"`
	Dirty bool   `json:"dirty"`
}

// clone returns a deep copy so model outputs never alias their input.
func (s State) clone() State {
	dirty := make(map[string]bool, len(s.Dirty))
	for k, v := range s.Dirty {
		dirty[k] = v
	}
	return State{Loc: s.Loc, Dirty: dirty}
}

// InitialState returns the conventional starting belief: at A, both
// squares assumed dirty.
func InitialState() State {
	return State{
		Loc:   LocA,
		Dirty: map[string]bool{LocA: true, LocB: true},
	}
}

// Transition predicts the next belief from the previous one and the
// last action. Movement is deterministic: LEFT lands on A, RIGHT lands
// on B. Dirt is never touched here, not even for SUCK; the belief about
// dirt changes only when a percept reports it.
func Transition(state State, lastAction Action) State {
	next := state.clone()
	switch lastAction {
	case ActionLeft:
		next.Loc = LocA
	case ActionRight:
		next.Loc = LocB
	}
	return next
}

// Sensor corrects a predicted belief with an observation: the robot is
// wherever the percept says, and that square's dirt flag is overwritten
// with what was actually seen. Beliefs about the other square carry
// over from the prediction.
func Sensor(percept Percept, predicted State) State {
	next := predicted.clone()
	next.Loc = percept.Loc
	if next.Dirty == nil {
		next.Dirty = make(map[string]bool, 2)
	}
	next.Dirty[percept.Loc] = percept.Dirty
	return next
}

// Rules returns the vacuum policy in priority order: clean the current
// square if it is dirty, otherwise move to the other square.
func Rules() []rule.Rule[State, Action] {
	return []rule.Rule[State, Action]{
		rule.New(func(s State) bool { return s.Dirty[s.Loc] }, ActionSuck),
		rule.New(func(s State) bool { return s.Loc == LocA }, ActionRight),
		rule.New(func(s State) bool { return s.Loc == LocB }, ActionLeft),
	}
}

// NewAgent constructs a vacuum agent with the standard models, rules,
// and initial belief.
func NewAgent() (*agent.Agent[State, Percept, Action], error) {
	return NewAgentWithState(InitialState())
}

// NewAgentWithState constructs a vacuum agent seeded with a custom
// initial belief.
func NewAgentWithState(initial State) (*agent.Agent[State, Percept, Action], error) {
	return agent.New(agent.Config[State, Percept, Action]{
		Transition:   Transition,
		Sensor:       Sensor,
		Rules:        Rules(),
		InitialState: initial,
		NoOp:         ActionNoOp,
	})
}

// DemoPercepts returns the classic five-step percept sequence used by
// the demonstration driver.
func DemoPercepts() []Percept {
	return []Percept{
		{Loc: LocA, Dirty: true},
		{Loc: LocA, Dirty: false},
		{Loc: LocB, Dirty: true},
		{Loc: LocB, Dirty: false},
		{Loc: LocA, Dirty: false},
	}
}

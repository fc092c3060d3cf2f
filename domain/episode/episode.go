// Package episode provides the recorded-run aggregate for reflex agents.
//
// An episode is one driven run of an agent over a percept sequence: every
// step records the percept delivered, the belief after the update, and
// the action selected. Percepts, beliefs, and actions are stored in
// their JSON form so episodes stay domain-agnostic.
package episode

import (
	"encoding/json"
	"time"
)

// Status represents the current status of an episode.
type Status string

const (
	StatusPending   Status = "pending"   // Created, no percept processed yet
	StatusRunning   Status = "running"   // Currently being driven
	StatusCompleted Status = "completed" // Percept sequence exhausted
	StatusFailed    Status = "failed"    // Terminated with error
)

// Step records one perceive cycle.
type Step struct {
	// Index is the zero-based position of this step in the episode.
	Index int `json:"index"`

	// Percept is the JSON form of the percept delivered at this step.
	Percept json.RawMessage `json:"percept"`

	// Belief is the JSON form of the belief state after the update.
	Belief json.RawMessage `json:"belief"`

	// Action is the JSON form of the action the agent selected.
	Action json.RawMessage `json:"action"`

	// Timestamp is when the step ran.
	Timestamp time.Time `json:"timestamp"`

	// Duration is how long the perceive cycle took.
	Duration time.Duration `json:"duration"`
}

// Episode represents a single recorded run of an agent.
// It is the aggregate root for the episode domain.
type Episode struct {
	ID          string          `json:"id"`
	World       string          `json:"world"`
	Status      Status          `json:"status"`
	Steps       []Step          `json:"steps"`
	FinalBelief json.RawMessage `json:"final_belief,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// New creates a pending episode for the named world.
func New(id, world string) *Episode {
	return &Episode{
		ID:        id,
		World:     world,
		Status:    StatusPending,
		Steps:     make([]Step, 0),
		StartTime: time.Now(),
	}
}

// Start marks the episode as running.
func (e *Episode) Start() {
	e.Status = StatusRunning
	e.StartTime = time.Now()
}

// AddStep appends a step record.
func (e *Episode) AddStep(s Step) {
	e.Steps = append(e.Steps, s)
}

// Complete marks the episode as successfully finished with the final belief.
func (e *Episode) Complete(finalBelief json.RawMessage) {
	e.Status = StatusCompleted
	e.FinalBelief = finalBelief
	e.EndTime = time.Now()
}

// Fail marks the episode as failed with an error.
func (e *Episode) Fail(err string) {
	e.Status = StatusFailed
	e.Error = err
	e.EndTime = time.Now()
}

// IsTerminal returns true if the episode has reached a terminal status.
func (e *Episode) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}

// Actions returns the recorded action sequence in step order.
func (e *Episode) Actions() []json.RawMessage {
	actions := make([]json.RawMessage, len(e.Steps))
	for i, s := range e.Steps {
		actions[i] = s.Action
	}
	return actions
}

// Duration returns the duration of the episode.
func (e *Episode) Duration() time.Duration {
	if e.EndTime.IsZero() {
		return time.Since(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}

package event

import (
	"encoding/json"
	"time"
)

// Type classifies domain events.
type Type string

// Event types for the reflex agent runtime.
const (
	// Episode lifecycle events
	TypeEpisodeStarted   Type = "episode.started"
	TypeEpisodeCompleted Type = "episode.completed"
	TypeEpisodeFailed    Type = "episode.failed"

	// Perceive cycle events, emitted once per step in this order.
	TypePerceptReceived Type = "percept.received"
	TypeBeliefRevised   Type = "belief.revised"
	TypeActionSelected  Type = "action.selected"
)

// Event payload structures

// EpisodeStartedPayload contains data for episode.started events.
type EpisodeStartedPayload struct {
	World         string          `json:"world"`
	InitialBelief json.RawMessage `json:"initial_belief,omitempty"`
	NoOp          json.RawMessage `json:"no_op,omitempty"`
}

// EpisodeCompletedPayload contains data for episode.completed events.
type EpisodeCompletedPayload struct {
	FinalBelief json.RawMessage `json:"final_belief,omitempty"`
	Steps       int             `json:"steps"`
	Duration    time.Duration   `json:"duration"`
}

// EpisodeFailedPayload contains data for episode.failed events.
type EpisodeFailedPayload struct {
	Error    string        `json:"error"`
	Step     int           `json:"step"`
	Duration time.Duration `json:"duration"`
}

// PerceptReceivedPayload contains data for percept.received events.
type PerceptReceivedPayload struct {
	Step    int             `json:"step"`
	Percept json.RawMessage `json:"percept"`
}

// BeliefRevisedPayload contains data for belief.revised events.
// Belief is the corrected state after the full predict/correct cycle.
type BeliefRevisedPayload struct {
	Step   int             `json:"step"`
	Belief json.RawMessage `json:"belief"`
}

// ActionSelectedPayload contains data for action.selected events.
// NoOp reports whether the selected action equals the agent's
// configured no-op, i.e. either no rule matched or a rule chose the
// no-op explicitly.
type ActionSelectedPayload struct {
	Step     int             `json:"step"`
	Action   json.RawMessage `json:"action"`
	NoOp     bool            `json:"no_op"`
	Duration time.Duration   `json:"duration"`
}

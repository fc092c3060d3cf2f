// Package statemachine provides the statekit integration for episode
// lifecycle management.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

// Context carries the episode through the lifecycle machine.
type Context struct {
	Episode *episode.Episode
}

// NewContext creates a new machine context for an episode.
func NewContext(ep *episode.Episode) *Context {
	return &Context{Episode: ep}
}

// State IDs as StateID type for statekit.
const (
	statePending   statekit.StateID = statekit.StateID(episode.StatusPending)
	stateRunning   statekit.StateID = statekit.StateID(episode.StatusRunning)
	stateCompleted statekit.StateID = statekit.StateID(episode.StatusCompleted)
	stateFailed    statekit.StateID = statekit.StateID(episode.StatusFailed)
)

// Lifecycle event types.
const (
	EventStart    statekit.EventType = "START"
	EventComplete statekit.EventType = "COMPLETE"
	EventFail     statekit.EventType = "FAIL"
)

// NewEpisodeMachine creates the canonical episode lifecycle statechart:
// pending -> running -> completed|failed. A pending episode may also
// fail directly, e.g. when the scenario cannot be loaded.
func NewEpisodeMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("episode").
		WithInitial(statePending).
		WithContext(&Context{}).
		WithAction("recordStatus", recordStatus).
		WithGuard("hasEpisode", guardHasEpisode).
		State(statePending).
			On(EventStart).Target(stateRunning).Guard("hasEpisode").Do("recordStatus").
			On(EventFail).Target(stateFailed).Do("recordStatus").
			Done().
		State(stateRunning).
			On(EventComplete).Target(stateCompleted).Do("recordStatus").
			On(EventFail).Target(stateFailed).Do("recordStatus").
			Done().
		State(stateCompleted).
			Final().
			Done().
		State(stateFailed).
			Final().
			Done().
		Build()
}

// StatusFromMachine converts a machine state ID to a domain status.
func StatusFromMachine(stateID statekit.StateID) episode.Status {
	return episode.Status(stateID)
}

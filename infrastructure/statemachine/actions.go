package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// FailPayload carries the failure reason with a FAIL event.
type FailPayload struct {
	Error string
}

// recordStatus syncs the episode aggregate with the machine transition.
// In statekit, actions receive a pointer to the context. Since our
// context is *Context, actions receive **Context.
func recordStatus(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Episode == nil {
		return
	}

	ep := (*ctx).Episode

	switch event.Type {
	case EventStart:
		ep.Start()
	case EventComplete:
		ep.Complete(ep.FinalBelief)
	case EventFail:
		reason := "episode failed"
		if payload, ok := event.Payload.(FailPayload); ok && payload.Error != "" {
			reason = payload.Error
		}
		ep.Fail(reason)
	}
}

// guardHasEpisode refuses lifecycle transitions without an episode.
// Guards receive the context by value; ours is *Context.
func guardHasEpisode(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.Episode != nil
}

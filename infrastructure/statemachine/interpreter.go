package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

// Interpreter wraps the statekit interpreter with episode-specific
// functionality.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the episode lifecycle machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the pending state.
func (i *Interpreter) Start() {
	i.interp.Start()
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// Status returns the current lifecycle status.
func (i *Interpreter) Status() episode.Status {
	state := i.interp.State()
	return StatusFromMachine(state.Value)
}

// Begin transitions the episode from pending to running.
func (i *Interpreter) Begin() {
	i.interp.Send(statekit.Event{Type: EventStart})
}

// Complete transitions the episode to completed.
func (i *Interpreter) Complete() {
	i.interp.Send(statekit.Event{Type: EventComplete})
}

// Fail transitions the episode to failed with the given reason.
func (i *Interpreter) Fail(reason string) {
	i.interp.Send(statekit.Event{
		Type:    EventFail,
		Payload: FailPayload{Error: reason},
	})
}

// IsTerminal returns true if the episode has reached a final state.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}

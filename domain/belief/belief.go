// Package belief provides the predict/correct belief update cycle and
// the model contracts it composes.
//
// A belief state is whatever type the domain instantiation chooses - a
// typed struct is preferred over an open map so that rule conditions
// keep exhaustiveness checking. The core never inspects the state; all
// interpretation is delegated to the two models and to rule conditions.
package belief

// TransitionModel predicts the next belief state from the prior state
// and the last action taken, independent of any new observation. It
// models environment dynamics only and must not consult the current
// percept. Implementations must be pure, total, and non-blocking.
type TransitionModel[S, A any] func(state S, lastAction A) S

// SensorModel fuses a new percept into a predicted belief state and
// returns the corrected, authoritative belief. It sees the last action
// only through the predicted state. Implementations must be pure,
// total, and non-blocking.
type SensorModel[S, P any] func(percept P, predicted S) S

// Update runs one predict-then-correct cycle:
//
//	predicted = transition(state, lastAction)
//	corrected = sensor(percept, predicted)
//
// The two phases are strictly sequential. Both models return a complete
// replacement state; Update never merges or partially applies. A panic
// from either model propagates - there is no principled way to recover
// a belief the model failed to compute.
func Update[S, P, A any](
	state S,
	lastAction A,
	percept P,
	transition TransitionModel[S, A],
	sensor SensorModel[S, P],
) S {
	predicted := transition(state, lastAction)
	return sensor(percept, predicted)
}

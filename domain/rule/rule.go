// Package rule provides condition-action rules and first-match selection.
package rule

// Condition is a predicate over a belief state.
// Conditions must be pure, total, and non-blocking: they may not panic,
// perform I/O, or depend on anything besides the state they are given.
type Condition[S any] func(state S) bool

// Rule pairs a condition with the action to take when it holds.
// Rules are immutable values; build them once and share them freely.
type Rule[S, A any] struct {
	Condition Condition[S]
	Action    A
}

// New creates a rule from a condition and an action.
func New[S, A any](condition Condition[S], action A) Rule[S, A] {
	return Rule[S, A]{Condition: condition, Action: action}
}

// Match scans rules in order and returns the first whose condition holds
// on state. Position is priority: when several conditions are true at
// once, the earliest rule wins. The second return value reports whether
// any rule matched; no match is not an error.
//
// Match does not recover panics from misbehaving conditions - a condition
// that panics violates its contract and the panic propagates to the
// caller.
func Match[S, A any](state S, rules []Rule[S, A]) (Rule[S, A], bool) {
	for _, r := range rules {
		if r.Condition != nil && r.Condition(state) {
			return r, true
		}
	}
	var zero Rule[S, A]
	return zero, false
}

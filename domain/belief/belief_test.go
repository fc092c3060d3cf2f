package belief

import "testing"

func TestUpdatePhaseOrder(t *testing.T) {
	t.Parallel()

	// The transition must run first on (state, lastAction), and the
	// sensor second on (percept, predicted). Encode each phase's inputs
	// into the state so wiring mistakes are visible.
	transition := func(state string, lastAction string) string {
		return "predicted(" + state + "," + lastAction + ")"
	}
	sensor := func(percept string, predicted string) string {
		return "corrected(" + percept + "," + predicted + ")"
	}

	got := Update("s0", "a0", "p1", transition, sensor)
	want := "corrected(p1,predicted(s0,a0))"
	if got != want {
		t.Errorf("Update() = %q, want %q", got, want)
	}
}

func TestUpdateEqualsComposition(t *testing.T) {
	t.Parallel()

	transition := func(state int, lastAction int) int { return state + lastAction }
	sensor := func(percept int, predicted int) int { return percept * predicted }

	for _, tc := range []struct{ state, lastAction, percept int }{
		{0, 0, 0},
		{1, 2, 3},
		{-4, 7, 2},
	} {
		got := Update(tc.state, tc.lastAction, tc.percept, transition, sensor)
		want := sensor(tc.percept, transition(tc.state, tc.lastAction))
		if got != want {
			t.Errorf("Update(%d,%d,%d) = %d, want %d", tc.state, tc.lastAction, tc.percept, got, want)
		}
	}
}

func TestUpdateTransitionNeverSeesPercept(t *testing.T) {
	t.Parallel()

	type state struct {
		FromTransition string
		FromSensor     string
	}

	transition := func(s state, lastAction string) state {
		// Only state and lastAction are in scope here; the percept has
		// no path into this call.
		s.FromTransition = lastAction
		return s
	}
	sensor := func(percept string, predicted state) state {
		predicted.FromSensor = percept
		return predicted
	}

	got := Update(state{}, "NO-OP", "observed", transition, sensor)
	if got.FromTransition != "NO-OP" {
		t.Errorf("transition saw lastAction %q, want NO-OP", got.FromTransition)
	}
	if got.FromSensor != "observed" {
		t.Errorf("sensor saw percept %q, want observed", got.FromSensor)
	}
}

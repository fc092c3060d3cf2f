package statemachine

import (
	"testing"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

func newTestInterpreter(t *testing.T, ep *episode.Episode) *Interpreter {
	t.Helper()

	machine, err := NewEpisodeMachine()
	if err != nil {
		t.Fatalf("NewEpisodeMachine() error = %v", err)
	}

	interp := NewInterpreter(machine, NewContext(ep))
	interp.Start()
	return interp
}

func TestLifecycleHappyPath(t *testing.T) {
	t.Parallel()

	ep := episode.New("ep-1", "vacuum")
	interp := newTestInterpreter(t, ep)

	if interp.Status() != episode.StatusPending {
		t.Errorf("initial status = %q, want pending", interp.Status())
	}

	interp.Begin()
	if interp.Status() != episode.StatusRunning {
		t.Errorf("status after Begin = %q, want running", interp.Status())
	}
	if ep.Status != episode.StatusRunning {
		t.Errorf("episode status = %q, want running", ep.Status)
	}

	interp.Complete()
	if interp.Status() != episode.StatusCompleted {
		t.Errorf("status after Complete = %q, want completed", interp.Status())
	}
	if ep.Status != episode.StatusCompleted {
		t.Errorf("episode status = %q, want completed", ep.Status)
	}
	if !interp.IsTerminal() {
		t.Error("completed lifecycle should be terminal")
	}
}

func TestLifecycleFailFromRunning(t *testing.T) {
	t.Parallel()

	ep := episode.New("ep-1", "vacuum")
	interp := newTestInterpreter(t, ep)

	interp.Begin()
	interp.Fail("sensor model panicked")

	if interp.Status() != episode.StatusFailed {
		t.Errorf("status = %q, want failed", interp.Status())
	}
	if ep.Error != "sensor model panicked" {
		t.Errorf("episode error = %q", ep.Error)
	}
	if !interp.IsTerminal() {
		t.Error("failed lifecycle should be terminal")
	}
}

func TestLifecycleFailFromPending(t *testing.T) {
	t.Parallel()

	ep := episode.New("ep-1", "vacuum")
	interp := newTestInterpreter(t, ep)

	// A pending episode can fail directly, e.g. when setup breaks
	// before the first percept.
	interp.Fail("scenario could not be loaded")

	if interp.Status() != episode.StatusFailed {
		t.Errorf("status = %q, want failed", interp.Status())
	}
	if ep.Status != episode.StatusFailed {
		t.Errorf("episode status = %q, want failed", ep.Status)
	}
}

func TestLifecycleIgnoresInvalidTransitions(t *testing.T) {
	t.Parallel()

	ep := episode.New("ep-1", "vacuum")
	interp := newTestInterpreter(t, ep)

	// COMPLETE is only valid from running; sending it while pending
	// must leave the machine where it was.
	interp.Complete()
	if interp.Status() != episode.StatusPending {
		t.Errorf("status = %q, want pending", interp.Status())
	}

	// Terminal states accept nothing further.
	interp.Begin()
	interp.Complete()
	interp.Fail("too late")
	if interp.Status() != episode.StatusCompleted {
		t.Errorf("status = %q, want completed", interp.Status())
	}
	if ep.Status != episode.StatusCompleted {
		t.Errorf("episode status = %q, want completed", ep.Status)
	}
}

func TestGuardRefusesStartWithoutEpisode(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t, nil)

	interp.Begin()
	if interp.Status() != episode.StatusPending {
		t.Errorf("status = %q, want pending: start must be guarded on an episode", interp.Status())
	}
}

package api

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/reflex-go/domain/agent"
)

type counter struct {
	Count int
}

func countingBuilder() *AgentBuilder[counter, int, string] {
	return NewAgentBuilder[counter, int, string]().
		WithTransitionModel(func(s counter, _ string) counter { return s }).
		WithSensorModel(func(p int, s counter) counter { return counter{Count: s.Count + p} }).
		WithNoOp("WAIT")
}

func TestBuilderBuildsWorkingAgent(t *testing.T) {
	t.Parallel()

	a, err := countingBuilder().
		WithRule(func(s counter) bool { return s.Count >= 3 }, "STOP").
		WithRule(func(s counter) bool { return true }, "GO").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := a.Perceive(1); got != "GO" {
		t.Errorf("Perceive(1) = %q, want GO", got)
	}
	if got := a.Perceive(2); got != "STOP" {
		t.Errorf("Perceive(2) = %q, want STOP", got)
	}
}

func TestBuilderRuleOrderIsPriority(t *testing.T) {
	t.Parallel()

	always := func(counter) bool { return true }

	a := countingBuilder().
		WithRule(always, "FIRST").
		WithRule(always, "SECOND").
		MustBuild()

	if got := a.Perceive(0); got != "FIRST" {
		t.Errorf("Perceive() = %q, want FIRST", got)
	}
}

func TestBuilderNoRulesYieldsNoOp(t *testing.T) {
	t.Parallel()

	a := countingBuilder().WithInitialState(counter{Count: 10}).MustBuild()

	if got := a.Perceive(5); got != "WAIT" {
		t.Errorf("Perceive() = %q, want WAIT", got)
	}
	if got := a.State().Count; got != 15 {
		t.Errorf("State().Count = %d, want 15", got)
	}
}

func TestBuilderMissingModels(t *testing.T) {
	t.Parallel()

	_, err := NewAgentBuilder[counter, int, string]().
		WithSensorModel(func(p int, s counter) counter { return s }).
		Build()
	if !errors.Is(err, agent.ErrNoTransitionModel) {
		t.Errorf("Build() error = %v, want ErrNoTransitionModel", err)
	}

	_, err = NewAgentBuilder[counter, int, string]().
		WithTransitionModel(func(s counter, _ string) counter { return s }).
		Build()
	if !errors.Is(err, agent.ErrNoSensorModel) {
		t.Errorf("Build() error = %v, want ErrNoSensorModel", err)
	}
}

func TestMustBuildPanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustBuild() on an invalid configuration should panic")
		}
	}()
	NewAgentBuilder[counter, int, string]().MustBuild()
}

func TestFacadeSessionRoundTrip(t *testing.T) {
	t.Parallel()

	a := countingBuilder().
		WithRule(func(s counter) bool { return s.Count > 0 }, "GO").
		MustBuild()

	events := NewEventStore()
	session, err := NewSession(a,
		WithWorld("counter"),
		WithEventStore(events),
		WithEpisodeStore(NewEpisodeStore()),
	)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	ep, err := session.Run(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(ep.Steps) != 3 {
		t.Fatalf("Steps = %d, want 3", len(ep.Steps))
	}

	r, err := NewReplay(events)
	if err != nil {
		t.Fatalf("NewReplay() error = %v", err)
	}

	fresh := countingBuilder().
		WithRule(func(s counter) bool { return s.Count > 0 }, "GO").
		MustBuild()

	div, err := Verify(context.Background(), r, ep.ID, fresh)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if div != nil {
		t.Errorf("Verify() reported divergence: %v", div)
	}
}

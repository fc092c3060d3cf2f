package api

import (
	"github.com/felixgeelhaar/reflex-go/domain/agent"
	"github.com/felixgeelhaar/reflex-go/domain/rule"
)

// AgentBuilder assembles an agent step by step. Rules are tried in the
// order they are added.
type AgentBuilder[S, P, A any] struct {
	config agent.Config[S, P, A]
}

// NewAgentBuilder creates an empty agent builder.
func NewAgentBuilder[S, P, A any]() *AgentBuilder[S, P, A] {
	return &AgentBuilder[S, P, A]{}
}

// WithTransitionModel sets the transition model. Required.
func (b *AgentBuilder[S, P, A]) WithTransitionModel(m TransitionModel[S, A]) *AgentBuilder[S, P, A] {
	b.config.Transition = m
	return b
}

// WithSensorModel sets the sensor model. Required.
func (b *AgentBuilder[S, P, A]) WithSensorModel(m SensorModel[S, P]) *AgentBuilder[S, P, A] {
	b.config.Sensor = m
	return b
}

// WithRule appends a condition-action rule. Earlier rules take
// priority.
func (b *AgentBuilder[S, P, A]) WithRule(cond Condition[S], action A) *AgentBuilder[S, P, A] {
	b.config.Rules = append(b.config.Rules, rule.New(cond, action))
	return b
}

// WithRules appends pre-built rules in order.
func (b *AgentBuilder[S, P, A]) WithRules(rules ...Rule[S, A]) *AgentBuilder[S, P, A] {
	b.config.Rules = append(b.config.Rules, rules...)
	return b
}

// WithInitialState seeds the belief state.
func (b *AgentBuilder[S, P, A]) WithInitialState(state S) *AgentBuilder[S, P, A] {
	b.config.InitialState = state
	return b
}

// WithNoOp sets the action returned when no rule matches.
func (b *AgentBuilder[S, P, A]) WithNoOp(action A) *AgentBuilder[S, P, A] {
	b.config.NoOp = action
	return b
}

// Build validates the configuration and creates the agent.
func (b *AgentBuilder[S, P, A]) Build() (*Agent[S, P, A], error) {
	return agent.New(b.config)
}

// MustBuild is like Build but panics on error. Intended for
// program-literal configurations.
func (b *AgentBuilder[S, P, A]) MustBuild() *Agent[S, P, A] {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}

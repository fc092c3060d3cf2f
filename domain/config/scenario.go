// Package config provides the scenario configuration model.
//
// A scenario file describes one driven run: which world to
// instantiate, the agent's initial belief, and the percept sequence the
// driver feeds it. Scenarios are the recorded-environment counterpart
// of a live host loop.
package config

import (
	"fmt"
	"strings"
)

// Scenario describes a scripted run of a bundled world.
type Scenario struct {
	// Name is a human-readable name for this scenario.
	Name string `yaml:"name" json:"name"`

	// World selects the bundled world instantiation. Currently only
	// "vacuum" ships with the runtime.
	World string `yaml:"world" json:"world"`

	// Log configures structured logging for the run.
	Log LogConfig `yaml:"log" json:"log"`

	// Store configures event/episode persistence for the run.
	Store StoreConfig `yaml:"store" json:"store"`

	// Tracing configures OpenTelemetry trace export for the run.
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`

	// Initial is the agent's initial belief.
	Initial InitialBelief `yaml:"initial" json:"initial"`

	// Percepts is the ordered percept sequence to feed the agent.
	Percepts []Percept `yaml:"percepts" json:"percepts"`
}

// LogConfig configures logging for a scenario run.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StoreConfig selects the persistence backend for a scenario run.
type StoreConfig struct {
	// Backend is one of "memory", "badger", or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the data directory (badger) or database file (sqlite).
	Path string `yaml:"path" json:"path"`
}

// TracingConfig configures trace export for a scenario run. Tracing is
// off unless an exporter is named.
type TracingConfig struct {
	// Exporter is one of "stdout", "otlp", or "noop".
	Exporter string `yaml:"exporter" json:"exporter"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	Insecure bool `yaml:"insecure" json:"insecure"`

	// SampleRate is the trace sampling ratio in [0, 1]. Zero means the
	// provider default.
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
}

// InitialBelief seeds the agent's belief state.
type InitialBelief struct {
	Loc   string          `yaml:"loc" json:"loc"`
	Dirty map[string]bool `yaml:"dirty" json:"dirty"`
}

// Percept is one scripted observation.
type Percept struct {
	Loc   string `yaml:"loc" json:"loc"`
	Dirty bool   `yaml:"dirty" json:"dirty"`
}

// Supported backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Validate checks the scenario for structural problems.
func (s *Scenario) Validate() error {
	var problems []string

	if s.Name == "" {
		problems = append(problems, "name is required")
	}

	if s.World == "" {
		problems = append(problems, "world is required")
	}

	if len(s.Percepts) == 0 {
		problems = append(problems, "at least one percept is required")
	}

	for i, p := range s.Percepts {
		if p.Loc == "" {
			problems = append(problems, fmt.Sprintf("percepts[%d]: loc is required", i))
		}
	}

	switch s.Store.Backend {
	case "", BackendMemory:
	case BackendBadger, BackendSQLite:
		if s.Store.Path == "" {
			problems = append(problems, "store.path is required for backend "+s.Store.Backend)
		}
	default:
		problems = append(problems, "unknown store backend: "+s.Store.Backend)
	}

	switch s.Tracing.Exporter {
	case "", "stdout", "otlp", "noop":
	default:
		problems = append(problems, "unknown tracing exporter: "+s.Tracing.Exporter)
	}
	if s.Tracing.SampleRate < 0 || s.Tracing.SampleRate > 1 {
		problems = append(problems, "tracing.sample_rate must be between 0 and 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	return nil
}

package config

import (
	"errors"
	"strings"
	"testing"
)

func validScenario() Scenario {
	return Scenario{
		Name:  "classic",
		World: "vacuum",
		Initial: InitialBelief{
			Loc:   "A",
			Dirty: map[string]bool{"A": true, "B": true},
		},
		Percepts: []Percept{
			{Loc: "A", Dirty: true},
			{Loc: "A", Dirty: false},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr bool
	}{
		{"valid", func(s *Scenario) {}, false},
		{"missing name", func(s *Scenario) { s.Name = "" }, true},
		{"missing world", func(s *Scenario) { s.World = "" }, true},
		{"no percepts", func(s *Scenario) { s.Percepts = nil }, true},
		{"percept without loc", func(s *Scenario) { s.Percepts[1].Loc = "" }, true},
		{"memory backend needs no path", func(s *Scenario) { s.Store.Backend = BackendMemory }, false},
		{"badger needs path", func(s *Scenario) { s.Store.Backend = BackendBadger }, true},
		{"badger with path", func(s *Scenario) {
			s.Store.Backend = BackendBadger
			s.Store.Path = "./data"
		}, false},
		{"sqlite needs path", func(s *Scenario) { s.Store.Backend = BackendSQLite }, true},
		{"unknown backend", func(s *Scenario) { s.Store.Backend = "cassandra" }, true},
		{"stdout tracing", func(s *Scenario) { s.Tracing.Exporter = "stdout" }, false},
		{"unknown tracing exporter", func(s *Scenario) { s.Tracing.Exporter = "jaeger" }, true},
		{"sample rate out of range", func(s *Scenario) { s.Tracing.SampleRate = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validScenario()
			tt.mutate(&s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want wrapped ErrValidation", err)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()

	s := Scenario{}
	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() of a zero scenario should fail")
	}

	// All three missing fields should be reported at once.
	for _, want := range []string{"name", "world", "percept"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

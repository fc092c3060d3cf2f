package config

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/reflex-go/domain/config"
)

func TestExpand(t *testing.T) {
	t.Setenv("REFLEX_ENV_SET", "value")

	tests := []struct {
		name    string
		input   string
		strict  bool
		want    string
		wantErr bool
	}{
		{"plain variable", "x=${REFLEX_ENV_SET}", false, "x=value", false},
		{"missing variable", "x=${REFLEX_ENV_UNSET}", false, "x=", false},
		{"missing variable strict", "x=${REFLEX_ENV_UNSET}", true, "", true},
		{"default used", "x=${REFLEX_ENV_UNSET:-fallback}", false, "x=fallback", false},
		{"default ignored when set", "x=${REFLEX_ENV_SET:-fallback}", false, "x=value", false},
		{"empty default", "x=${REFLEX_ENV_UNSET:-}", false, "x=", false},
		{"required set", "x=${REFLEX_ENV_SET:?must be set}", false, "x=value", false},
		{"required missing", "x=${REFLEX_ENV_UNSET:?must be set}", false, "", true},
		{"required missing no message", "x=${REFLEX_ENV_UNSET:?}", false, "", true},
		{"no variables", "plain text", true, "plain text", false},
		{"multiple variables", "${REFLEX_ENV_SET}-${REFLEX_ENV_UNSET:-d}", false, "value-d", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &envExpander{strict: tt.strict}
			got, err := e.Expand(tt.input)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, config.ErrMissingEnvVars) {
					t.Errorf("Expand() error = %v, want wrapped ErrMissingEnvVars", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandLeavesNonMatchingTextAlone(t *testing.T) {
	t.Parallel()

	e := &envExpander{}

	for _, input := range []string{
		"$HOME",        // no braces
		"${1BADNAME}",  // invalid identifier
		"{NOT_A_VAR}",  // no dollar
		"cost is $5.00",
	} {
		got, err := e.Expand(input)
		if err != nil {
			t.Errorf("Expand(%q) error = %v", input, err)
			continue
		}
		if got != input {
			t.Errorf("Expand(%q) = %q, want unchanged", input, got)
		}
	}
}

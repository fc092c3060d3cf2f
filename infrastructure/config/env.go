package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/reflex-go/domain/config"
)

// envExpander expands environment variables in configuration strings.
type envExpander struct {
	// strict fails if a referenced variable is not set.
	strict bool
	// missing tracks missing environment variables.
	missing []string
}

// bracketPattern matches ${VAR}, ${VAR:-default}, ${VAR:?error}.
var bracketPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)

// Expand expands environment variables in the input string.
// Supported patterns:
//   - ${VAR} - expands to the value of VAR
//   - ${VAR:-default} - expands to VAR or "default" if not set
//   - ${VAR:?message} - fails if VAR is not set
func (e *envExpander) Expand(input string) (string, error) {
	e.missing = nil
	var failures []string

	result := bracketPattern.ReplaceAllStringFunc(input, func(match string) string {
		inner := match[2 : len(match)-1] // Remove ${ and }

		parts := strings.SplitN(inner, ":", 2)
		varName := parts[0]
		var modifier string
		if len(parts) > 1 {
			modifier = parts[1]
		}

		value, exists := os.LookupEnv(varName)

		switch {
		case exists:
			return value
		case strings.HasPrefix(modifier, "-"):
			return modifier[1:]
		case strings.HasPrefix(modifier, "?"):
			msg := modifier[1:]
			if msg == "" {
				msg = "required but not set"
			}
			failures = append(failures, varName+": "+msg)
			return ""
		default:
			e.missing = append(e.missing, varName)
			return ""
		}
	})

	if len(failures) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVars, strings.Join(failures, "; "))
	}

	if e.strict && len(e.missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVars, strings.Join(e.missing, ", "))
	}

	return result, nil
}

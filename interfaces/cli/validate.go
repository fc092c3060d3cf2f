package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/reflex-go/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	scenarioPath string
	strict       bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario file",
		Long: `Validate a scenario file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Required fields (name, world, percepts)
  - Store backend configuration
  - Environment variable references (in strict mode)

Examples:
  # Validate a scenario file
  reflex validate -s scenario.yaml

  # Strict validation (fail on missing env vars)
  reflex validate -s scenario.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateScenario(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "Path to scenario file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

// validateScenario validates the scenario file.
func (a *App) validateScenario(opts *validateOptions) error {
	loaderOpts := []infraconfig.LoaderOption{
		infraconfig.WithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, infraconfig.WithStrictEnv(true))
	}

	loader := infraconfig.NewLoaderWithOptions(loaderOpts...)
	scenario, err := loader.LoadFile(opts.scenarioPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Scenario is valid\n")
	fmt.Fprintf(a.stdout, "  Name: %s\n", scenario.Name)
	fmt.Fprintf(a.stdout, "  World: %s\n", scenario.World)
	fmt.Fprintf(a.stdout, "  Store: %s\n", storeLabel(scenario.Store))
	fmt.Fprintf(a.stdout, "  Percepts: %d\n", len(scenario.Percepts))

	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reflex-go/application"
	domainconfig "github.com/felixgeelhaar/reflex-go/domain/config"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	infraconfig "github.com/felixgeelhaar/reflex-go/infrastructure/config"
	"github.com/felixgeelhaar/reflex-go/infrastructure/logging"
	"github.com/felixgeelhaar/reflex-go/infrastructure/observability"
	"github.com/felixgeelhaar/reflex-go/pack/vacuum"
)

// runOptions holds options for the run command.
type runOptions struct {
	scenarioPath string
	verbose      bool
	jsonOutput   bool
	dryRun       bool
	watch        bool
	logLevel     string
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario through a reflex agent",
		Long: `Run a scripted scenario: the scenario file names a world, seeds the
agent's initial belief, and lists the percept sequence to feed it. Every
step is journaled to the configured store, so the episode can later be
replayed and verified.

Examples:
  # Run a scenario
  reflex run -s scenario.yaml

  # Run and print the episode as JSON
  reflex run -s scenario.yaml --json

  # Validate the scenario without running it
  reflex run -s scenario.yaml --dry-run

  # Re-run the scenario whenever the file changes
  reflex run -s scenario.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenario(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "Path to scenario file (required)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the episode as JSON")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the scenario without running it")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run the scenario when the file changes")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override the scenario's log level")

	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

// runScenario loads and executes the scenario, optionally watching the
// file for changes.
func (a *App) runScenario(ctx context.Context, opts *runOptions) error {
	if err := a.runOnce(ctx, opts); err != nil {
		if !opts.watch {
			return err
		}
		// In watch mode a broken scenario is reported, not fatal; the
		// next save gets another chance.
		fmt.Fprintf(a.stderr, "run failed: %v\n", err)
	}

	if !opts.watch {
		return nil
	}

	fmt.Fprintf(a.stdout, "Watching %s for changes (Ctrl-C to stop)...\n", opts.scenarioPath)

	watcher := infraconfig.NewWatcher(opts.scenarioPath, func(path string) {
		if err := a.runOnce(ctx, opts); err != nil {
			fmt.Fprintf(a.stderr, "run failed: %v\n", err)
		}
	})

	if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runOnce executes the scenario a single time.
func (a *App) runOnce(ctx context.Context, opts *runOptions) error {
	loader := infraconfig.NewLoader()
	scenario, err := loader.LoadFile(opts.scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	logCfg := logging.DefaultConfig()
	if scenario.Log.Level != "" {
		logCfg.Level = scenario.Log.Level
	}
	if scenario.Log.Format != "" {
		logCfg.Format = scenario.Log.Format
	}
	logging.Init(logCfg)
	if opts.logLevel != "" {
		logging.SetLevel(opts.logLevel)
	}

	if opts.verbose {
		fmt.Fprintf(a.stdout, "Scenario loaded: %s\n", scenario.Name)
		fmt.Fprintf(a.stdout, "  World: %s\n", scenario.World)
		fmt.Fprintf(a.stdout, "  Store: %s\n", storeLabel(scenario.Store))
		fmt.Fprintf(a.stdout, "  Percepts: %d\n", len(scenario.Percepts))
		fmt.Fprintf(a.stdout, "\n")
	}

	if opts.dryRun {
		fmt.Fprintf(a.stdout, "Scenario is valid.\n")
		return nil
	}

	if scenario.World != "vacuum" {
		return fmt.Errorf("unknown world: %s", scenario.World)
	}

	provider, err := openTelemetry(scenario.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	st, err := openStores(scenario.Store)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ep, err := a.runVacuum(ctx, scenario, st)
	if err != nil {
		return err
	}

	return a.printEpisode(ep, opts)
}

// runVacuum drives the vacuum world over the scenario's percepts.
func (a *App) runVacuum(ctx context.Context, scenario *domainconfig.Scenario, st *stores) (*episode.Episode, error) {
	initial := vacuum.InitialState()
	if scenario.Initial.Loc != "" {
		initial.Loc = scenario.Initial.Loc
	}
	if scenario.Initial.Dirty != nil {
		initial.Dirty = scenario.Initial.Dirty
	}

	ag, err := vacuum.NewAgentWithState(initial)
	if err != nil {
		return nil, err
	}

	percepts := make([]vacuum.Percept, len(scenario.Percepts))
	for i, p := range scenario.Percepts {
		percepts[i] = vacuum.Percept{Loc: p.Loc, Dirty: p.Dirty}
	}

	session, err := application.NewSession(ag,
		application.WithWorld(scenario.World),
		application.WithEventStore(st.events),
		application.WithEpisodeStore(st.episodes),
	)
	if err != nil {
		return nil, err
	}

	return session.Run(ctx, percepts)
}

// printEpisode writes the episode result in the requested format.
func (a *App) printEpisode(ep *episode.Episode, opts *runOptions) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ep)
	}

	fmt.Fprintf(a.stdout, "Episode %s\n", ep.ID)
	fmt.Fprintf(a.stdout, "  World: %s\n", ep.World)
	fmt.Fprintf(a.stdout, "  Status: %s\n", ep.Status)
	fmt.Fprintf(a.stdout, "  Steps: %d\n", len(ep.Steps))
	fmt.Fprintf(a.stdout, "  Duration: %s\n", ep.Duration().Round(time.Microsecond))

	for _, s := range ep.Steps {
		fmt.Fprintf(a.stdout, "  %2d. percept %s -> action %s\n", s.Index+1, s.Percept, s.Action)
	}

	if ep.FinalBelief != nil {
		fmt.Fprintf(a.stdout, "  Final belief: %s\n", ep.FinalBelief)
	}
	if ep.Error != "" {
		fmt.Fprintf(a.stdout, "  Error: %s\n", ep.Error)
	}

	return nil
}

// openTelemetry builds a trace provider from the scenario's tracing
// section. An empty exporter yields a disabled provider whose Shutdown
// is a no-op.
func openTelemetry(cfg domainconfig.TracingConfig) (*observability.Provider, error) {
	if cfg.Exporter == "" {
		return observability.New()
	}

	opts := []observability.Option{
		observability.WithServiceVersion(Version),
		observability.WithTracing(observability.ExporterType(cfg.Exporter)),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, observability.WithTracingEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, observability.WithInsecureTracing())
	}
	if cfg.SampleRate > 0 {
		opts = append(opts, observability.WithSampleRate(cfg.SampleRate))
	}

	return observability.New(opts...)
}

// storeLabel renders a store configuration for display.
func storeLabel(cfg domainconfig.StoreConfig) string {
	if cfg.Backend == "" || cfg.Backend == domainconfig.BackendMemory {
		return domainconfig.BackendMemory
	}
	return fmt.Sprintf("%s (%s)", cfg.Backend, cfg.Path)
}

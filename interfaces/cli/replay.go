package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/reflex-go/application"
	domainconfig "github.com/felixgeelhaar/reflex-go/domain/config"
	"github.com/felixgeelhaar/reflex-go/pack/vacuum"
)

// replayOptions holds options for the replay and verify commands.
type replayOptions struct {
	storePath  string
	jsonOutput bool
}

// newReplayCmd creates the replay command.
func (a *App) newReplayCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay <episode-id>",
		Short: "Reconstruct an episode from its event journal",
		Long: `Reconstruct an episode purely from its journaled events and print it.

The journal must live in a badger store written by a previous run with
store backend "badger".

Examples:
  reflex replay ep-1724... --store ./data
  reflex replay ep-1724... --store ./data --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.replayEpisode(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.storePath, "store", "", "Path to the badger store directory (required)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the episode as JSON")

	_ = cmd.MarkFlagRequired("store")

	return cmd
}

// newVerifyCmd creates the verify command.
func (a *App) newVerifyCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "verify <episode-id>",
		Short: "Verify a recorded episode against a fresh agent",
		Long: `Replay a recorded episode's percepts into a freshly constructed agent
and check every belief and action against the journal. A deterministic
agent configuration reproduces the recording exactly; any divergence is
reported with the step at which it occurred.

Examples:
  reflex verify ep-1724... --store ./data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verifyEpisode(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.storePath, "store", "", "Path to the badger store directory (required)")

	_ = cmd.MarkFlagRequired("store")

	return cmd
}

// openReplay opens the journal store and builds a replay service.
func openReplay(storePath string) (*application.Replay, *stores, error) {
	st, err := openStores(domainconfig.StoreConfig{
		Backend: domainconfig.BackendBadger,
		Path:    storePath,
	})
	if err != nil {
		return nil, nil, err
	}

	r, err := application.NewReplay(st.events)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return r, st, nil
}

// replayEpisode reconstructs and prints an episode.
func (a *App) replayEpisode(ctx context.Context, episodeID string, opts *replayOptions) error {
	r, st, err := openReplay(opts.storePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ep, err := r.ReconstructEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ep)
	}

	fmt.Fprintf(a.stdout, "Episode %s (reconstructed)\n", ep.ID)
	fmt.Fprintf(a.stdout, "  World: %s\n", ep.World)
	fmt.Fprintf(a.stdout, "  Status: %s\n", ep.Status)
	fmt.Fprintf(a.stdout, "  Steps: %d\n", len(ep.Steps))
	for _, s := range ep.Steps {
		fmt.Fprintf(a.stdout, "  %2d. percept %s -> action %s\n", s.Index+1, s.Percept, s.Action)
	}
	if ep.FinalBelief != nil {
		fmt.Fprintf(a.stdout, "  Final belief: %s\n", ep.FinalBelief)
	}

	return nil
}

// verifyEpisode checks a recorded episode against a fresh vacuum agent.
func (a *App) verifyEpisode(ctx context.Context, episodeID string, opts *replayOptions) error {
	r, st, err := openReplay(opts.storePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ep, err := r.ReconstructEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if ep.World != "vacuum" {
		return fmt.Errorf("cannot verify world %q: only the vacuum world ships with the runtime", ep.World)
	}

	initial := vacuum.InitialState()
	if raw, err := r.InitialBelief(ctx, episodeID); err == nil && raw != nil {
		if err := json.Unmarshal(raw, &initial); err != nil {
			return fmt.Errorf("decode initial belief: %w", err)
		}
	}

	fresh, err := vacuum.NewAgentWithState(initial)
	if err != nil {
		return err
	}

	div, err := application.Verify(ctx, r, episodeID, fresh)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if div != nil {
		fmt.Fprintf(a.stdout, "✗ Episode %s diverged\n", episodeID)
		fmt.Fprintf(a.stdout, "  %s\n", div)
		return fmt.Errorf("episode diverged at step %d", div.Step)
	}

	fmt.Fprintf(a.stdout, "✓ Episode %s verified: %d steps reproduced exactly\n", episodeID, len(ep.Steps))
	return nil
}

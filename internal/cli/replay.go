package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/harness"
	"github.com/roach88/turnkit/internal/ir"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplayEntry is one verified history entry.
type ReplayEntry struct {
	Seq          int    `json:"seq"`
	ID           string `json:"id"`
	Choice       string `json:"choice"`
	ChoiceDigest string `json:"choice_digest"`
	Edits        int    `json:"edits"`
	Digest       string `json:"digest"`
}

// ReplayResult is the outcome of the replay command.
type ReplayResult struct {
	Scenario      string        `json:"scenario"`
	Game          string        `json:"game"`
	Entries       []ReplayEntry `json:"entries"`
	Deterministic bool          `json:"deterministic"`
	Divergence    string        `json:"divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Verify a scenario's history replays deterministically",
		Long: `Play a scenario's steps, then check its history:

  - every entry's forward edits reproduce the state after it, and its
    inverse edits restore the state before it
  - replaying the committed choices on a fresh game reaches the same
    digest after every entry

Step expectations and assertions are not checked; use "turnkit test".

Exit codes:
  0 - History is deterministic
  1 - Replay diverged
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}
	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	sess, err := harness.Open(scenario, harness.WithLogger(logger), harness.WithMaxSteps(opts.MaxSteps))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start game", err)
	}

	f := opts.formatter(cmd)
	for i, step := range scenario.Steps {
		if err := sess.Reduce(step.Choice); err != nil {
			f.VerboseLog("step %d not committed: %v", i+1, err)
		}
	}

	result := ReplayResult{Scenario: scenario.Name, Game: scenario.Game, Deterministic: true}
	for _, h := range sess.History() {
		after, _ := sess.SnapshotAfterID(h.ID)
		digest, err := ir.PayloadDigest(after)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to digest state", err)
		}
		choiceDigest, err := ir.ChoiceDigest(h.Choice.IR())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to digest choice", err)
		}
		result.Entries = append(result.Entries, ReplayEntry{
			Seq:          h.Seq,
			ID:           h.ID,
			Choice:       h.Choice.String(),
			ChoiceDigest: choiceDigest,
			Edits:        len(h.Forward),
			Digest:       digest,
		})
	}

	verr := harness.Verify(scenario, sess, harness.WithLogger(logger), harness.WithMaxSteps(opts.MaxSteps))
	if verr != nil {
		var rerr *harness.ReplayError
		if !errors.As(verr, &rerr) {
			return WrapExitError(ExitCommandError, "replay could not run", verr)
		}
		result.Deterministic = false
		result.Divergence = rerr.Error()
	}

	if f.IsJSON() {
		if result.Deterministic {
			if err := f.Success(result); err != nil {
				return err
			}
		} else if err := f.Failure(result, CodeReplayDiverged, result.Divergence); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (%s): %d entries\n", result.Scenario, result.Game, len(result.Entries))
		for _, e := range result.Entries {
			fmt.Fprintf(w, "  %3d %-12s %2d edits  %s  %s\n", e.Seq, e.ID, e.Edits, shortDigest(e.Digest), e.Choice)
		}
		if result.Deterministic {
			fmt.Fprintln(w, "✓ deterministic")
		} else {
			fmt.Fprintf(w, "✗ %s\n", result.Divergence)
		}
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay diverged")
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

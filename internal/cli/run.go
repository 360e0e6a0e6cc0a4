package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/harness"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/session"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	GameFlags
	Metrics bool
}

// RunReport is the state of a game after the run command's choices.
type RunReport struct {
	Game     string      `json:"game"`
	Applied  int         `json:"applied"`
	Decision ir.IRObject `json:"decision"`
	Model    ir.IRValue  `json:"model"`
	Log      []string    `json:"log"`
	History  []string    `json:"history"`
	Digest   string      `json:"digest"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <game>",
		Short: "Play choices against a new game",
		Long: `Start a new game and submit choices in order.

Choices come from --file (a list) followed by each --choice. The run stops
at the first rejected choice and exits with code 1.

Examples:
  turnkit run coinflip --choice '{"type":"Flip","result":"heads"}'
  turnkit run race --options '{"players":["ada","bob"],"goal":10}' --file rolls.yaml
  turnkit run race --options '{"players":["ada","bob"]}' --choice '{"type":"Roll","pips":3}' --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGame(opts, args[0], cmd)
		},
	}

	opts.GameFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print engine metrics after the run (text exposition format)")

	return cmd
}

func runGame(opts *RunOptions, game string, cmd *cobra.Command) error {
	def, err := lookupGame(game)
	if err != nil {
		return err
	}
	choices, err := opts.choices()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid choices", err)
	}

	reg := prometheus.NewRegistry()
	var metrics *engine.Metrics
	if opts.Metrics {
		if metrics, err = engine.NewMetrics(reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
	}

	f := opts.formatter(cmd)
	sess, err := openGame(def, &opts.GameFlags, opts.RootOptions, opts.Logger(cmd.ErrOrStderr()), metrics)
	if err != nil {
		return err
	}

	applied := 0
	var runErr error
	for i, choice := range choices {
		f.VerboseLog("choice %d: %v", i+1, choice)
		if err := sess.Reduce(choice); err != nil {
			runErr = fmt.Errorf("choice %d: %w", i+1, err)
			break
		}
		applied++
	}

	report, err := buildReport(sess, applied)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read game state", err)
	}

	if runErr != nil {
		code := CodeTransition
		if engine.IsValidationError(runErr) {
			code = CodeInvalidChoice
		}
		if f.IsJSON() {
			if err := f.Failure(report, code, runErr.Error()); err != nil {
				return err
			}
		} else {
			writeReport(cmd.OutOrStdout(), report)
			fmt.Fprintf(cmd.OutOrStdout(), "\nstopped: %v\n", runErr)
		}
		return WrapExitError(ExitFailure, "run stopped", runErr)
	}

	if f.IsJSON() {
		if err := f.Success(report); err != nil {
			return err
		}
	} else {
		writeReport(cmd.OutOrStdout(), report)
	}

	if opts.Metrics {
		// Keep JSON output parseable.
		w := cmd.OutOrStdout()
		if f.IsJSON() {
			w = f.GetErrWriter()
		}
		return writeMetrics(w, reg)
	}
	return nil
}

func buildReport(sess session.Session, applied int) (RunReport, error) {
	snap := sess.Snapshot()
	lines, err := harness.LogLines(snap)
	if err != nil {
		return RunReport{}, err
	}

	history := sess.History()
	ids := make([]string, len(history))
	for i, h := range history {
		ids[i] = h.ID
	}

	return RunReport{
		Game:     sess.Name(),
		Applied:  applied,
		Decision: sess.Decision().IR(),
		Model:    snap["model"],
		Log:      lines,
		History:  ids,
		Digest:   sess.Digest(),
	}, nil
}

func writeReport(w io.Writer, r RunReport) {
	model, err := ir.MarshalIRValue(r.Model)
	if err != nil {
		model = []byte(fmt.Sprintf("<%v>", err))
	}
	decision, err := ir.MarshalIRValue(r.Decision)
	if err != nil {
		decision = []byte(fmt.Sprintf("<%v>", err))
	}

	fmt.Fprintf(w, "game:     %s\n", r.Game)
	fmt.Fprintf(w, "applied:  %d\n", r.Applied)
	fmt.Fprintf(w, "decision: %s\n", decision)
	fmt.Fprintf(w, "model:    %s\n", model)
	fmt.Fprintf(w, "digest:   %s\n", r.Digest)
	if len(r.Log) > 0 {
		fmt.Fprintln(w, "log:")
		for _, line := range r.Log {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// writeMetrics dumps every gathered family in text exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to gather metrics", err)
	}
	var errs []error
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

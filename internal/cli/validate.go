package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	GameFlags
}

// ValidateReport is the outcome of checking one choice.
type ValidateReport struct {
	Game     string      `json:"game"`
	Decision string      `json:"decision"`
	Valid    bool        `json:"valid"`
	Choice   ir.IRObject `json:"choice,omitempty"` // the validated choice
	Issues   []string    `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <game> <choice>",
		Short: "Check a choice without applying it",
		Long: `Check a choice against the active decision of a game.

The game is started with --options and advanced with --file and --choice
first; the final positional choice is only validated, never applied.

Exit codes:
  0 - Choice is valid
  1 - Choice is rejected
  2 - Command error

Examples:
  turnkit validate coinflip '{"type":"Flip","result":"edge"}'
  turnkit validate race '{"type":"Roll","pips":9}' --options '{"players":["ada","bob"]}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1], cmd)
		},
	}

	opts.GameFlags.register(cmd)
	return cmd
}

func runValidate(opts *ValidateOptions, game, rawChoice string, cmd *cobra.Command) error {
	def, err := lookupGame(game)
	if err != nil {
		return err
	}
	candidate, err := parseObject(rawChoice)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid choice", err)
	}
	setup, err := opts.choices()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid choices", err)
	}

	sess, err := openGame(def, &opts.GameFlags, opts.RootOptions, opts.Logger(cmd.ErrOrStderr()), nil)
	if err != nil {
		return err
	}
	for i, c := range setup {
		if err := sess.Reduce(c); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("setup choice %d failed", i+1), err)
		}
	}

	report := ValidateReport{Game: sess.Name(), Decision: sess.Decision().Type}
	choice, verr := sess.Validate(candidate)

	var rejected *engine.ValidationError
	switch {
	case verr == nil:
		report.Valid = true
		report.Choice = choice.IR()
	case errors.As(verr, &rejected):
		for _, issue := range rejected.Issues {
			report.Issues = append(report.Issues, issue.String())
		}
	default:
		return WrapExitError(ExitCommandError, "validation could not run", verr)
	}

	f := opts.formatter(cmd)
	if f.IsJSON() {
		if report.Valid {
			if err := f.Success(report); err != nil {
				return err
			}
		} else if err := f.Failure(report, CodeInvalidChoice, rejected.Error()); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if report.Valid {
			fmt.Fprintf(w, "✓ valid %s for %s\n", choice.String(), report.Decision)
		} else {
			fmt.Fprintf(w, "✗ rejected for %s\n", report.Decision)
			for _, issue := range report.Issues {
				fmt.Fprintf(w, "  %s\n", issue)
			}
		}
	}

	if !report.Valid {
		return NewExitError(ExitFailure, "choice rejected")
	}
	return nil
}

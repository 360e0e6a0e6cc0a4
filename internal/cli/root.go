package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/config"
	"github.com/roach88/turnkit/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	MaxSteps int
	Level    slog.Level
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the turnkit CLI.
// Flag defaults come from cfg.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{Level: cfg.Level()}

	cmd := &cobra.Command{
		Use:     "turnkit",
		Short:   "turnkit - turn-based game engine",
		Version: fmt.Sprintf("%s (snapshot format v%s)", ir.EngineVersion, ir.IRVersion),
		Long: `Run, inspect and test turn-based games built on the turnkit engine.

Defaults can be set in the environment: TURNKIT_FORMAT, TURNKIT_LOG_LEVEL
and TURNKIT_MAX_STEPS.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.MaxSteps <= 0 {
				return fmt.Errorf("invalid max-steps %d: must be positive", opts.MaxSteps)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.MaxSteps, "max-steps", cfg.MaxSteps, "interrupts one transition may resolve")

	cmd.AddCommand(NewGamesCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Logger returns the operational logger for a command: a text handler on
// w at the configured level, or debug when verbose.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := o.Level
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// formatter returns the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

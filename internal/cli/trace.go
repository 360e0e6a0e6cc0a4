package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/harness"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/session"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Step int // show only this step (1-based); 0 shows all
}

// TraceEdit is one edit of a committed step, with its value.
type TraceEdit struct {
	Op    string     `json:"op"`
	Path  string     `json:"path"`
	Value ir.IRValue `json:"value,omitempty"`
}

// TraceEntry is one scenario step as shown by the trace command.
type TraceEntry struct {
	Step     int            `json:"step"`
	Choice   map[string]any `json:"choice"`
	Outcome  string         `json:"outcome"`
	ID       string         `json:"id,omitempty"`
	Decision string         `json:"decision"`
	Forward  []TraceEdit    `json:"forward,omitempty"`
	Inverse  []TraceEdit    `json:"inverse,omitempty"`
	Log      []string       `json:"log,omitempty"` // lines written by this step
	Issues   []string       `json:"issues,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Show what each step of a scenario did",
		Long: `Play a scenario and show, per step, the outcome, the resulting decision,
the forward and inverse edits and the log lines it wrote.

Examples:
  turnkit trace race.yaml
  turnkit trace race.yaml --step 2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Step, "step", 0, "show only this step (1-based)")
	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.Step < 0 || opts.Step > len(scenario.Steps) {
		return NewExitError(ExitCommandError, fmt.Sprintf("--step %d out of range: scenario has %d steps", opts.Step, len(scenario.Steps)))
	}

	result, sess, err := harness.Execute(scenario,
		harness.WithLogger(opts.Logger(cmd.ErrOrStderr())),
		harness.WithMaxSteps(opts.MaxSteps),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	entries, err := traceEntries(sess, result)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build trace", err)
	}
	if opts.Step > 0 {
		entries = entries[opts.Step-1 : opts.Step]
	}

	f := opts.formatter(cmd)
	if f.IsJSON() {
		return f.Success(entries)
	}
	writeTrace(cmd.OutOrStdout(), entries)
	return nil
}

// traceEntries joins the harness trace with the session's history and log.
func traceEntries(sess session.Session, result *harness.Result) ([]TraceEntry, error) {
	lines, err := harness.LogLines(sess.Snapshot())
	if err != nil {
		return nil, err
	}
	owners, err := logOwners(sess.Snapshot())
	if err != nil {
		return nil, err
	}

	history := sess.History()
	byID := make(map[string]int, len(history))
	for i, h := range history {
		byID[h.ID] = i
	}

	entries := make([]TraceEntry, len(result.Trace))
	for i, ts := range result.Trace {
		e := TraceEntry{
			Step:     ts.Step,
			Choice:   ts.Choice,
			Outcome:  ts.Outcome,
			ID:       ts.ID,
			Decision: ts.Decision,
			Issues:   ts.Issues,
			Error:    ts.Error,
		}
		if idx, ok := byID[ts.ID]; ok && ts.ID != "" {
			h := history[idx]
			for _, ed := range h.Forward {
				e.Forward = append(e.Forward, TraceEdit{Op: string(ed.Op), Path: ed.Path, Value: ed.Value})
			}
			for _, ed := range h.Inverse {
				e.Inverse = append(e.Inverse, TraceEdit{Op: string(ed.Op), Path: ed.Path, Value: ed.Value})
			}
			for j, owner := range owners {
				if owner == h.ID {
					e.Log = append(e.Log, lines[j])
				}
			}
		}
		entries[i] = e
	}
	return entries, nil
}

// logOwners returns the history id of every log entry.
func logOwners(snapshot ir.IRObject) ([]string, error) {
	var entries []struct {
		HistoryObjectID string `json:"historyObjectID"`
	}
	if err := ir.Decode(snapshot["log"], &entries); err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.HistoryObjectID
	}
	return out, nil
}

func writeTrace(w io.Writer, entries []TraceEntry) {
	for _, e := range entries {
		choice, err := ir.MarshalCanonical(e.Choice)
		if err != nil {
			choice = []byte(fmt.Sprintf("%v", e.Choice))
		}
		fmt.Fprintf(w, "[%d] %s -> %s", e.Step, choice, e.Outcome)
		if e.ID != "" {
			fmt.Fprintf(w, " %s", e.ID)
		}
		fmt.Fprintf(w, " (%s)\n", e.Decision)

		for _, ed := range e.Forward {
			fmt.Fprintf(w, "    + %s\n", editLine(ed))
		}
		for _, ed := range e.Inverse {
			fmt.Fprintf(w, "    - %s\n", editLine(ed))
		}
		for _, line := range e.Log {
			fmt.Fprintf(w, "    log: %s\n", line)
		}
		for _, issue := range e.Issues {
			fmt.Fprintf(w, "    issue: %s\n", issue)
		}
		if e.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", e.Error)
		}
	}
}

func editLine(e TraceEdit) string {
	if e.Value == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	data, err := ir.MarshalIRValue(e.Value)
	if err != nil {
		data = []byte("?")
	}
	return fmt.Sprintf("%s %s %s", e.Op, e.Path, data)
}

package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/turnkit/internal/diff"
	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/games"
	"github.com/roach88/turnkit/internal/session"
)

// DefaultIDPrefix names history ids when a scenario sets none.
const DefaultIDPrefix = "step"

// Option configures a scenario run.
type Option func(*runOptions)

type runOptions struct {
	logger   *slog.Logger
	metrics  *engine.Metrics
	maxSteps int
}

// WithLogger sends engine logs to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// WithMetrics records transitions into m.
func WithMetrics(m *engine.Metrics) Option {
	return func(o *runOptions) {
		o.metrics = m
	}
}

// WithMaxSteps sets the interrupt quota for scenarios that do not set
// their own.
func WithMaxSteps(n int) Option {
	return func(o *runOptions) {
		o.maxSteps = n
	}
}

// Open starts a fresh session for the scenario's game with deterministic
// history ids.
func Open(scenario *Scenario, opts ...Option) (session.Session, error) {
	o := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	def, ok := games.Lookup(scenario.Game)
	if !ok {
		return nil, fmt.Errorf("unknown game %q", scenario.Game)
	}

	prefix := scenario.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	engineOpts := []engine.EngineOption{
		engine.WithIDGenerator(engine.NewSequenceGenerator(prefix)),
		engine.WithLogger(o.logger),
		engine.WithMetrics(o.metrics),
	}
	maxSteps := o.maxSteps
	if scenario.MaxSteps > 0 {
		maxSteps = scenario.MaxSteps
	}
	if maxSteps > 0 {
		engineOpts = append(engineOpts, engine.WithMaxSteps(maxSteps))
	}
	return def.Open(scenario.Options, engineOpts...)
}

// Run executes a scenario and returns the result.
//
// Every scenario runs on a fresh session. Step expectations and assertions
// that do not hold are reported in the result; the returned error is for
// scenarios that cannot run at all (unknown game, rejected options).
//
// Execution flow:
//  1. Open the game with the scenario's options
//  2. Submit each step's choice, recording the outcome
//  3. Check the assertions against the final game
//  4. Verify the history replays to the same states
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	result, _, err := Execute(scenario, opts...)
	return result, err
}

// Execute is Run, also returning the finished session for inspection.
func Execute(scenario *Scenario, opts ...Option) (*Result, session.Session, error) {
	sess, err := Open(scenario, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", scenario.Game, err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		ts := submit(sess, i+1, step.Choice)
		result.Trace = append(result.Trace, ts)

		want := step.Expect
		if want == "" {
			want = ExpectOK
		}
		if got := expectationOf(ts.Outcome); got != want {
			result.AddError(fmt.Sprintf("step %d: expected %s, got %s%s", i+1, want, ts.Outcome, outcomeDetail(ts)))
		}
	}

	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(sess, result.Trace, a); err != nil {
			result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}

	if err := Verify(scenario, sess, opts...); err != nil {
		result.AddError(err.Error())
	}

	result.Digest = sess.Digest()
	return result, sess, nil
}

// submit reduces one choice and records what happened.
func submit(sess session.Session, n int, choice map[string]any) TraceStep {
	ts := TraceStep{Step: n, Choice: choice}

	err := sess.Reduce(choice)
	var verr *engine.ValidationError
	switch {
	case err == nil:
		history := sess.History()
		h := history[len(history)-1]
		ts.Outcome = OutcomeCommitted
		ts.ID = h.ID
		ts.Edits = editSummary(h.Forward)
	case errors.As(err, &verr):
		ts.Outcome = OutcomeInvalid
		for _, issue := range verr.Issues {
			ts.Issues = append(ts.Issues, issue.String())
		}
	default:
		ts.Outcome = OutcomeError
		ts.Error = err.Error()
	}

	ts.Decision = sess.Decision().Type
	return ts
}

// editSummary renders edits as "op path", leaving out values.
func editSummary(edits diff.Edits) []string {
	if len(edits) == 0 {
		return nil
	}
	out := make([]string, len(edits))
	for i, e := range edits {
		out[i] = fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	return out
}

func expectationOf(outcome string) string {
	switch outcome {
	case OutcomeCommitted:
		return ExpectOK
	case OutcomeInvalid:
		return ExpectInvalid
	default:
		return ExpectError
	}
}

func outcomeDetail(ts TraceStep) string {
	switch {
	case len(ts.Issues) > 0:
		return " (" + strings.Join(ts.Issues, "; ") + ")"
	case ts.Error != "":
		return " (" + ts.Error + ")"
	default:
		return ""
	}
}

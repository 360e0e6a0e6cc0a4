package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/rules"
)

// flipModel is the coin flip game: every Flip choice appends its result.
type flipModel struct {
	Flips []string `json:"flips"`
}

type noOptions struct{}

func coinFlipRules() Rules[flipModel, noOptions] {
	return Rules[flipModel, noOptions]{
		Name:         "coinflip",
		DecisionTags: []string{"AwaitingFlip"},
		ChoiceValidators: map[string]Validator[flipModel]{
			"AwaitingFlip": func(flipModel, Decision) (rules.Rule, error) {
				return rules.Compile(`close({type: "Flip", result: "heads" | "tails"})`)
			},
		},
		DecisionReducers: map[string]DecisionReducer[flipModel]{
			"AwaitingFlip": func(m *flipModel, _ Decision, c Choice, log Logger) (Result, error) {
				var flip struct {
					Result string `json:"result"`
				}
				if err := c.Decode(&flip); err != nil {
					return Result{}, err
				}
				m.Flips = append(m.Flips, flip.Result)
				log.Log("flipped {}", flip.Result)
				return Decide(NewDecision("AwaitingFlip")), nil
			},
		},
		CreateInitialPayload: func(noOptions) (Payload[flipModel], error) {
			return Payload[flipModel]{
				Model:    flipModel{Flips: []string{}},
				Decision: NewDecision("AwaitingFlip"),
			}, nil
		},
	}
}

func flip(result string) Choice {
	return NewChoice("Flip", ir.O("result", ir.IRString(result)))
}

// pipeModel records the order reducers ran in.
type pipeModel struct {
	Trace []string `json:"trace"`
}

var errBoom = errors.New("boom")

// pipeRules declares a game whose Start reducer is supplied by the test.
// Interrupts: A schedules C; B does nothing; C decides Done; Loop
// reschedules itself; Fail errors.
func pipeRules(start DecisionReducer[pipeModel]) Rules[pipeModel, noOptions] {
	accept := func(pipeModel, Decision) (rules.Rule, error) {
		return rules.Func(func(raw ir.IRValue) (ir.IRValue, rules.Issues) { return raw, nil }), nil
	}
	record := func(name string, res Result, err error) InterruptReducer[pipeModel] {
		return func(m *pipeModel, _ Interrupt, log Logger) (Result, error) {
			m.Trace = append(m.Trace, name)
			log.Log("resolved {}", name)
			return res, err
		}
	}

	return Rules[pipeModel, noOptions]{
		Name:          "pipe",
		DecisionTags:  []string{"Start", "Done"},
		InterruptTags: []string{"A", "B", "C", "Loop", "Fail"},
		ChoiceValidators: map[string]Validator[pipeModel]{
			"Start": accept,
			"Done":  accept,
		},
		DecisionReducers: map[string]DecisionReducer[pipeModel]{
			"Start": start,
			"Done": func(*pipeModel, Decision, Choice, Logger) (Result, error) {
				return Decide(NewDecision("Done")), nil
			},
		},
		InterruptReducers: map[string]InterruptReducer[pipeModel]{
			"A":    record("A", Defer(NewInterrupt("C")), nil),
			"B":    record("B", NoProgress(), nil),
			"C":    record("C", Decide(NewDecision("Done")), nil),
			"Loop": record("Loop", Defer(NewInterrupt("Loop")), nil),
			"Fail": record("Fail", Result{}, errBoom),
		},
		CreateInitialPayload: func(noOptions) (Payload[pipeModel], error) {
			return Payload[pipeModel]{
				Model:    pipeModel{Trace: []string{}},
				Decision: NewDecision("Start"),
			}, nil
		},
	}
}

func scheduling(next ...Queueable) DecisionReducer[pipeModel] {
	return func(m *pipeModel, _ Decision, _ Choice, log Logger) (Result, error) {
		m.Trace = append(m.Trace, "start")
		log.Log("started")
		return Defer(next...), nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine[M, O any](t *testing.T, r Rules[M, O], opts ...EngineOption) *Engine[M, O] {
	t.Helper()
	opts = append([]EngineOption{WithLogger(quietLogger()), WithIDGenerator(NewSequenceGenerator("h"))}, opts...)
	e, err := New(r, opts...)
	require.NoError(t, err)
	return e
}

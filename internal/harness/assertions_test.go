package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/session"
)

func raceSession(t *testing.T, rolls ...int) (session.Session, []TraceStep) {
	t.Helper()
	sess, err := Open(&Scenario{Name: "race", Game: "race", Options: map[string]any{"players": []any{"ada", "bob"}}})
	require.NoError(t, err)

	var trace []TraceStep
	for i, pips := range rolls {
		ts := submit(sess, i+1, map[string]any{"type": "Roll", "pips": pips})
		require.Equal(t, OutcomeCommitted, ts.Outcome, "roll %d: %v", i+1, ts.Issues)
		trace = append(trace, ts)
	}
	return sess, trace
}

func TestEvaluateAssertion(t *testing.T) {
	sess, trace := raceSession(t, 3, 2)

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "decision tag",
			assertion: Assertion{Type: AssertDecision, Tag: "AwaitingRoll"},
		},
		{
			name:      "decision fields",
			assertion: Assertion{Type: AssertDecision, Tag: "AwaitingRoll", Fields: map[string]any{"player": "ada"}},
		},
		{
			name:      "decision wrong tag",
			assertion: Assertion{Type: AssertDecision, Tag: "GameOver"},
			wantErr:   "Expected: GameOver",
		},
		{
			name:      "decision wrong field",
			assertion: Assertion{Type: AssertDecision, Tag: "AwaitingRoll", Fields: map[string]any{"player": "bob"}},
			wantErr:   `Expected: AwaitingRoll with player="bob"`,
		},
		{
			name:      "model value",
			assertion: Assertion{Type: AssertModel, Path: "/players/1/position", Equals: 2},
		},
		{
			name:      "model object",
			assertion: Assertion{Type: AssertModel, Path: "/players/0", Equals: map[string]any{"name": "ada", "position": 3}},
		},
		{
			name:      "model null",
			assertion: Assertion{Type: AssertModel, Path: "/winner", Equals: nil},
		},
		{
			name:      "model mismatch",
			assertion: Assertion{Type: AssertModel, Path: "/turn", Equals: 1},
			wantErr:   "Actual: 0",
		},
		{
			name:      "model missing path",
			assertion: Assertion{Type: AssertModel, Path: "/score", Equals: 1},
			wantErr:   "path not found",
		},
		{
			name:      "history length",
			assertion: Assertion{Type: AssertHistoryLength, Count: 2},
		},
		{
			name:      "log contains",
			assertion: Assertion{Type: AssertLogContains, Text: `"bob" moves to 2`},
		},
		{
			name:      "log missing",
			assertion: Assertion{Type: AssertLogContains, Text: "wins"},
			wantErr:   `a log line containing "wins"`,
		},
		{
			name:      "state by step",
			assertion: Assertion{Type: AssertStateByStep, Step: 2, Path: "/players/1/position", Equals: 0},
		},
		{
			name:      "state by step before first",
			assertion: Assertion{Type: AssertStateByStep, Step: 1, Path: "/turn", Equals: 0},
		},
		{
			name:      "state by step out of range",
			assertion: Assertion{Type: AssertStateByStep, Step: 3, Path: "/turn", Equals: 0},
			wantErr:   "at least 3 committed steps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evaluateAssertion(sess, trace, tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertHistoryLength,
		Expected: "2 transitions",
		Actual:   "1 transitions",
		Trace: []TraceStep{
			{Step: 1, Choice: map[string]any{"type": "Flip"}, Outcome: OutcomeCommitted, Decision: "AwaitingFlip"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: history_length")
	assert.Contains(t, msg, "  Expected: 2 transitions")
	assert.Contains(t, msg, "  Actual: 1 transitions")
	assert.Contains(t, msg, "[1] map[type:Flip] -> committed (AwaitingFlip)")
}

func TestLogLines(t *testing.T) {
	sess, _ := raceSession(t, 3)

	lines, err := LogLines(sess.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, []string{`"ada" rolls 3`, `"ada" moves to 3`}, lines)
}

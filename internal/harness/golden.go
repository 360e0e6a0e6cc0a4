package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/turnkit/internal/ir"
)

// TraceSnapshot captures the parts of a run that golden files pin down.
// Validation issue text and digests are left out: they are checked by
// assertions and Verify instead.
type TraceSnapshot struct {
	ScenarioName string
	Game         string
	Pass         bool
	Trace        []TraceStep
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Trace))
	for i, step := range s.Trace {
		m := map[string]any{
			"step":     step.Step,
			"choice":   step.Choice,
			"outcome":  step.Outcome,
			"decision": step.Decision,
		}
		if step.ID != "" {
			m["id"] = step.ID
		}
		if len(step.Edits) > 0 {
			m["edits"] = step.Edits
		}
		steps[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"game":          s.Game,
		"pass":          s.Pass,
		"trace":         steps,
	}
}

// MarshalTrace renders a run as canonical JSON.
func MarshalTrace(scenario *Scenario, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Game:         scenario.Game,
		Pass:         result.Pass,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against the scenario's
// golden file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return nil
}

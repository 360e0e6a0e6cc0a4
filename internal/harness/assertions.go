package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/turnkit/internal/diff"
	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []TraceStep // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, step := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %v -> %s (%s)\n", step.Step, step.Choice, step.Outcome, step.Decision)
	}

	return buf.String()
}

// evaluateAssertion checks one assertion against the finished session.
func evaluateAssertion(sess session.Session, trace []TraceStep, a Assertion) error {
	switch a.Type {
	case AssertDecision:
		return assertDecision(sess.Decision(), trace, a)
	case AssertModel:
		return assertValueAt(sess.Snapshot()["model"], trace, a)
	case AssertHistoryLength:
		return assertHistoryLength(sess.History(), trace, a)
	case AssertLogContains:
		return assertLogContains(sess.Snapshot(), trace, a)
	case AssertStateByStep:
		return assertStateByStep(sess, trace, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertDecision checks the active decision's tag and a subset of its fields.
func assertDecision(d engine.Decision, trace []TraceStep, a Assertion) error {
	if d.Type != a.Tag {
		return &AssertionError{
			Type:     AssertDecision,
			Expected: a.Tag,
			Actual:   d.String(),
			Trace:    trace,
		}
	}

	for _, k := range sortedFieldKeys(a.Fields) {
		want, err := ir.FromGo(a.Fields[k])
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if !ir.Equal(want, d.Get(k)) {
			return &AssertionError{
				Type:     AssertDecision,
				Expected: fmt.Sprintf("%s with %s=%s", a.Tag, k, render(want)),
				Actual:   d.String(),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertValueAt compares the value at a.Path inside model with a.Equals.
func assertValueAt(model ir.IRValue, trace []TraceStep, a Assertion) error {
	want, err := ir.FromGo(a.Equals)
	if err != nil {
		return fmt.Errorf("equals: %w", err)
	}

	got, err := diff.Get(model, a.Path)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %s", pathLabel(a.Path), render(want)),
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if !ir.Equal(want, got) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %s", pathLabel(a.Path), render(want)),
			Actual:   render(got),
			Trace:    trace,
		}
	}
	return nil
}

func assertHistoryLength(history []engine.HistoryObject, trace []TraceStep, a Assertion) error {
	if len(history) != a.Count {
		return &AssertionError{
			Type:     AssertHistoryLength,
			Expected: fmt.Sprintf("%d transitions", a.Count),
			Actual:   fmt.Sprintf("%d transitions", len(history)),
			Trace:    trace,
		}
	}
	return nil
}

func assertLogContains(snapshot ir.IRObject, trace []TraceStep, a Assertion) error {
	lines, err := LogLines(snapshot)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if strings.Contains(line, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("a log line containing %q", a.Text),
		Actual:   fmt.Sprintf("%d lines: %s", len(lines), strings.Join(lines, " | ")),
		Trace:    trace,
	}
}

// assertStateByStep checks the model as it was before committed step a.Step.
func assertStateByStep(sess session.Session, trace []TraceStep, a Assertion) error {
	history := sess.History()
	if a.Step > len(history) {
		return &AssertionError{
			Type:     AssertStateByStep,
			Expected: fmt.Sprintf("at least %d committed steps", a.Step),
			Actual:   fmt.Sprintf("%d committed steps", len(history)),
			Trace:    trace,
		}
	}

	id := history[a.Step-1].ID
	snap, ok := sess.SnapshotByID(id)
	if !ok {
		return fmt.Errorf("history id %s not found", id)
	}
	return assertValueAt(snap["model"], trace, a)
}

// LogLines renders the log of a payload snapshot, one string per entry.
func LogLines(snapshot ir.IRObject) ([]string, error) {
	var entries []engine.LogEntry
	if err := ir.Decode(snapshot["log"], &entries); err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines, nil
}

func render(v ir.IRValue) string {
	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

func pathLabel(p string) string {
	if p == "" {
		return "(model)"
	}
	return p
}

func sortedFieldKeys(m map[string]any) []string {
	obj := make(ir.IRObject, len(m))
	for k := range m {
		obj[k] = ir.IRNull{}
	}
	return obj.SortedKeys()
}

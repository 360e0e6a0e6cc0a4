package rules

import (
	"fmt"
	"strings"

	"github.com/roach88/turnkit/internal/ir"
)

// Rule parses and validates a raw value.
//
// Check returns the validated value when issues is empty. Implementations
// must not retain or modify raw.
type Rule interface {
	Check(raw ir.IRValue) (ir.IRValue, Issues)
}

// Issue is one reason a value failed validation.
type Issue struct {
	Path    string `json:"path"` // dotted field path, empty for the value itself
	Message string `json:"message"`
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Issues is the diagnostic produced by a failed check.
type Issues []Issue

// String joins all issues with "; ".
func (is Issues) String() string {
	parts := make([]string, len(is))
	for i, issue := range is {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// Func adapts a function to the Rule interface.
type Func func(raw ir.IRValue) (ir.IRValue, Issues)

// Check implements Rule.
func (f Func) Check(raw ir.IRValue) (ir.IRValue, Issues) {
	return f(raw)
}

// All runs rules in order, feeding each validated value to the next.
// It stops at the first rule that reports issues.
func All(rs ...Rule) Rule {
	return Func(func(raw ir.IRValue) (ir.IRValue, Issues) {
		cur := raw
		for _, r := range rs {
			out, issues := r.Check(cur)
			if len(issues) > 0 {
				return nil, issues
			}
			cur = out
		}
		return cur, nil
	})
}

// Reject returns a rule that fails every value with message.
// Useful for decisions that accept no player input.
func Reject(message string) Rule {
	return Func(func(ir.IRValue) (ir.IRValue, Issues) {
		return nil, Issues{{Message: message}}
	})
}

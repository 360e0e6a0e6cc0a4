// Package rules provides the validation rule engine used by the choice gate.
//
// A Rule parses and validates a raw choice. The engine treats rules as
// opaque: it hands a rule the raw input converted to IR and receives either
// the validated value or a list of Issues.
//
// Schema is the CUE-backed implementation. A schema is CUE source that the
// raw input is unified with; the result must be concrete. Schemas are
// typically built per decision from the current model, e.g.:
//
//	rules.Compilef(`close({type: "Move", steps: >=1 & <=%d})`, model.MaxSteps)
//
// Func adapts a plain Go function for checks CUE cannot express.
package rules

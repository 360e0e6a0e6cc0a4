// Package diff computes and applies structural edit lists over ir values.
//
// Diff(before, after) returns a forward edit list that turns before into
// after and an inverse edit list that turns after back into before. Edits
// are addressed by RFC 6901 JSON Pointers and use the RFC 6902 operation
// names (add, remove, replace).
//
// INVARIANTS:
//   - Apply(before, forward) is structurally equal to after
//   - Apply(after, inverse) is structurally equal to before
//   - Apply never mutates its input; containers on the edited path are
//     copied, untouched subtrees are shared
//
// Diff is deterministic: object keys are visited in canonical order, so the
// same pair of values always yields byte-identical edit lists.
package diff

// Package ir provides the constrained value representation every game
// snapshot is expressed in.
//
// A committed payload (model, decision, pending queue, log) is frozen into an
// IRValue tree. Diffs, structural equality and digests all operate on that
// tree, never on the designer's Go types.
//
// This package imports nothing internal. All other internal packages may
// import it.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Object iteration is always in RFC 8785 key order (SortedKeys)
//   - Digests use MarshalCanonical only
package ir

// Package harness runs game scenarios and checks their outcomes.
//
// A scenario is a YAML file naming a built-in game, its options, a list of
// choices to submit in order and assertions over the result:
//
//	name: three_heads
//	game: coinflip
//	steps:
//	  - choice: {type: Flip, result: heads}
//	  - choice: {type: Flip, result: edge}
//	    expect: invalid
//	assertions:
//	  - type: model
//	    path: /flips
//	    equals: [heads]
//	  - type: history_length
//	    count: 1
//
// Each step's expect is ok (the default), invalid (rejected by the
// validation gate, game unchanged) or error (any other failure). History
// ids come from a sequence generator, so traces are reproducible and can
// be compared against golden files.
//
// Supported assertions:
//   - decision: the active decision has tag, and fields as a subset
//   - model: the value at a JSON Pointer into the final model equals a value
//   - history_length: the number of committed transitions
//   - log_contains: some rendered log line contains text
//   - state_by_step: like model, but against the model reconstructed from
//     before the given 1-based committed step
//
// Verify replays a finished session's choices on a fresh game and compares
// digests after every step, and checks every history entry's edit lists
// undo and redo each other.
package harness

// Package engine implements the turnkit reduction engine.
//
// A game is declared as Rules: tag sets for Decisions and Interrupts, a
// choice validator and a decision reducer per decision tag, an interrupt
// reducer per interrupt tag, an initializer and an optional fallback. New
// checks the tables cover the declared tags and returns an Engine.
//
// TRANSITIONS:
//
// ReduceChoice is the only way a Game changes. It validates the choice,
// opens a staging copy of the committed payload, runs the decision reducer,
// drains the pending queue first-in first-out until a decision is adopted,
// and commits. Commit freezes the staging copy into an IR snapshot, diffs it
// against the previous snapshot and appends a HistoryObject holding both
// edit lists.
//
// Every failure happens before commit, so a failed transition leaves the
// game exactly as it was. Log entries written by reducers live in the
// staging copy and vanish with it.
//
// HISTORY:
//
// History is append-only. StateByID walks inverse edit lists from the
// newest entry back to a given one to reconstruct an earlier payload; it is
// linear in the distance from the end and meant for audit and debugging.
//
// CONCURRENCY:
//
// An Engine is immutable and may be shared. A Game has no locking; one
// transition at a time per game.
package engine

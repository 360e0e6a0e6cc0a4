package harness

import (
	"fmt"

	"github.com/roach88/turnkit/internal/diff"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/session"
)

// ReplayError reports the first history entry that did not reproduce.
type ReplayError struct {
	ID     string
	Seq    int
	Reason string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay diverged at %s (seq %d): %s", e.ID, e.Seq, e.Reason)
}

// Verify checks that a finished session's history is sound:
//   - every entry's forward edits turn the state before it into the state
//     after it, and its inverse edits turn it back
//   - replaying the recorded choices on a fresh game reaches the same
//     digest after every entry
//
// Only the scenario's game, options, id prefix and quota are used.
func Verify(scenario *Scenario, sess session.Session, opts ...Option) error {
	history := sess.History()

	for _, h := range history {
		before, ok := sess.SnapshotByID(h.ID)
		if !ok {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: "no state before entry"}
		}
		after, ok := sess.SnapshotAfterID(h.ID)
		if !ok {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: "no state after entry"}
		}

		redone, err := diff.Apply(before, h.Forward)
		if err != nil {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: fmt.Sprintf("forward edits: %v", err)}
		}
		if !ir.Equal(redone, after) {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: "forward edits do not reach the recorded state"}
		}

		undone, err := diff.Apply(after, h.Inverse)
		if err != nil {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: fmt.Sprintf("inverse edits: %v", err)}
		}
		if !ir.Equal(undone, before) {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: "inverse edits do not restore the prior state"}
		}
	}

	fresh, err := Open(scenario, replayOptions(opts)...)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	for _, h := range history {
		if err := fresh.Reduce(h.Choice); err != nil {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: fmt.Sprintf("choice rejected on replay: %v", err)}
		}

		after, _ := sess.SnapshotAfterID(h.ID)
		want, err := ir.PayloadDigest(after)
		if err != nil {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: err.Error()}
		}
		if got := fresh.Digest(); got != want {
			return &ReplayError{ID: h.ID, Seq: h.Seq, Reason: fmt.Sprintf("digest %s, recorded %s", got, want)}
		}
	}
	return nil
}

// replayOptions keeps the caller's logger and quota but never records
// metrics twice.
func replayOptions(opts []Option) []Option {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	var out []Option
	if o.logger != nil {
		out = append(out, WithLogger(o.logger))
	}
	if o.maxSteps > 0 {
		out = append(out, WithMaxSteps(o.maxSteps))
	}
	return out
}

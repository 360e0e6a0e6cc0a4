package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/session"
)

func TestVerify_RecordedGame(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/race_full_game.yaml")
	require.NoError(t, err)

	sess, err := Open(scenario)
	require.NoError(t, err)
	for _, step := range scenario.Steps {
		_ = sess.Reduce(step.Choice)
	}
	require.Len(t, sess.History(), 4)

	assert.NoError(t, Verify(scenario, sess))
}

func TestVerify_EmptyHistory(t *testing.T) {
	scenario := &Scenario{Name: "empty", Game: "coinflip"}
	sess, err := Open(scenario)
	require.NoError(t, err)

	assert.NoError(t, Verify(scenario, sess))
}

// tampered reports a history whose first entry claims an extra edit.
type tampered struct {
	session.Session
}

func (s tampered) History() []engine.HistoryObject {
	history := s.Session.History()
	h := history[0]
	h.Forward = append(h.Forward[:len(h.Forward):len(h.Forward)],
		h.Forward[0])
	history[0] = h
	return history
}

func TestVerify_DetectsBadEdits(t *testing.T) {
	scenario := &Scenario{Name: "tamper", Game: "coinflip"}
	sess, err := Open(scenario)
	require.NoError(t, err)
	require.NoError(t, sess.Reduce(map[string]any{"type": "Flip", "result": "heads"}))

	err = Verify(scenario, tampered{sess})
	require.Error(t, err)

	var rerr *ReplayError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "step-1", rerr.ID)
	assert.Equal(t, 1, rerr.Seq)
	assert.Contains(t, rerr.Reason, "forward edits")
}

func TestVerify_DetectsDivergentReplay(t *testing.T) {
	recorded := &Scenario{Name: "recorded", Game: "coinflip", IDPrefix: "a"}
	sess, err := Open(recorded)
	require.NoError(t, err)
	require.NoError(t, sess.Reduce(map[string]any{"type": "Flip", "result": "heads"}))

	// Log entries carry the history id, so a different prefix changes the digest.
	other := &Scenario{Name: "other", Game: "coinflip", IDPrefix: "b"}
	err = Verify(other, sess)
	require.Error(t, err)

	var rerr *ReplayError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Reason, "digest")
}

func TestReplayError_Message(t *testing.T) {
	err := &ReplayError{ID: "step-2", Seq: 2, Reason: "boom"}
	assert.Equal(t, "replay diverged at step-2 (seq 2): boom", err.Error())
}

func TestVerify_SnapshotsMatchDigests(t *testing.T) {
	scenario := &Scenario{Name: "digests", Game: "coinflip"}
	sess, err := Open(scenario)
	require.NoError(t, err)
	require.NoError(t, sess.Reduce(map[string]any{"type": "Flip", "result": "tails"}))

	after, ok := sess.SnapshotAfterID("step-1")
	require.True(t, ok)
	digest, err := ir.PayloadDigest(after)
	require.NoError(t, err)
	assert.Equal(t, sess.Digest(), digest)
}

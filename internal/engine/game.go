package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/turnkit/internal/diff"
	"github.com/roach88/turnkit/internal/ir"
)

// Payload is a complete game state: the designer's model, the one active
// Decision, the pending queue and the accumulated log.
type Payload[M any] struct {
	Model    M           `json:"model"`
	Decision Decision    `json:"decision"`
	Next     []NextEntry `json:"next"`
	Log      []LogEntry  `json:"log"`
}

// HistoryObject records one committed transition.
//
// Forward turns the payload before the transition into the payload after
// it; Inverse turns it back.
type HistoryObject struct {
	ID      string     `json:"id"`
	Seq     int        `json:"seq"` // 1-based commit ordinal
	Choice  Choice     `json:"choice"`
	Forward diff.Edits `json:"forward"`
	Inverse diff.Edits `json:"inverse"`
}

// Game is a running game: the committed state plus its history.
//
// The committed state is held as a frozen IR snapshot. Accessors decode
// fresh copies, so nothing a caller does to a returned Payload reaches the
// game. Only the engine's ReduceChoice replaces the state.
//
// A Game is not safe for concurrent mutation. Callers serving several
// clients must serialize transitions per game.
type Game[M any] struct {
	state   ir.IRObject
	history []HistoryObject
	future  []HistoryObject // reserved for redo; never populated
}

// State returns a copy of the committed payload.
func (g *Game[M]) State() Payload[M] {
	p, err := decodePayload[M](g.state)
	if err != nil {
		panic(fmt.Sprintf("engine: committed snapshot does not decode: %v", err))
	}
	return p
}

// Snapshot returns a deep copy of the committed snapshot.
func (g *Game[M]) Snapshot() ir.IRObject {
	return ir.Clone(g.state).(ir.IRObject)
}

// Digest identifies the committed state by content.
func (g *Game[M]) Digest() string {
	return ir.MustPayloadDigest(g.state)
}

// Decision returns the active decision.
func (g *Game[M]) Decision() Decision {
	d, err := variantFromIR(g.state["decision"])
	if err != nil {
		panic(fmt.Sprintf("engine: committed snapshot has no decision: %v", err))
	}
	return Decision{d}
}

// History returns the committed transitions, oldest first.
// The edit values share structure with the game; treat them as read-only.
func (g *Game[M]) History() []HistoryObject {
	return slices.Clone(g.history)
}

// Len returns the number of committed transitions.
func (g *Game[M]) Len() int {
	return len(g.history)
}

// Future returns redo entries. Always empty: redo is not supported.
func (g *Game[M]) Future() []HistoryObject {
	return slices.Clone(g.future)
}

// indexOf returns the history index of id, or -1.
func (g *Game[M]) indexOf(id string) int {
	return slices.IndexFunc(g.history, func(h HistoryObject) bool { return h.ID == id })
}

// SnapshotByID reconstructs the snapshot from just before the transition
// with the given id by undoing it and every later transition, newest first.
// Returns false if id is not in the history.
func (g *Game[M]) SnapshotByID(id string) (ir.IRObject, bool) {
	idx := g.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return g.rewind(idx), true
}

// SnapshotAfterID reconstructs the snapshot from just after the transition
// with the given id. Returns false if id is not in the history.
func (g *Game[M]) SnapshotAfterID(id string) (ir.IRObject, bool) {
	idx := g.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return g.rewind(idx + 1), true
}

// rewind undoes history[to:] against the committed state.
// A failed inverse means the history is corrupt, which is a programming
// error, so it panics.
func (g *Game[M]) rewind(to int) ir.IRObject {
	var cur ir.IRValue = g.state
	for i := len(g.history) - 1; i >= to; i-- {
		next, err := diff.Apply(cur, g.history[i].Inverse)
		if err != nil {
			panic(fmt.Sprintf("engine: history entry %s does not undo: %v", g.history[i].ID, err))
		}
		cur = next
	}
	obj, ok := cur.(ir.IRObject)
	if !ok {
		panic(fmt.Sprintf("engine: rewound snapshot is %T, not an object", cur))
	}
	return obj
}

// snapshotOf freezes a payload into IR.
func snapshotOf[M any](p Payload[M]) (ir.IRObject, error) {
	model, err := ir.FromGo(p.Model)
	if err != nil {
		return nil, &SnapshotError{Part: "model", Err: err}
	}

	next := make(ir.IRArray, len(p.Next))
	for i, n := range p.Next {
		next[i] = n.IR()
	}

	log := make(ir.IRArray, len(p.Log))
	for i, l := range p.Log {
		log[i] = l.IR()
	}

	return ir.IRObject{
		"model":    model,
		"decision": p.Decision.IR(),
		"next":     next,
		"log":      log,
	}, nil
}

// decodePayload thaws a snapshot into a fresh Payload.
func decodePayload[M any](snapshot ir.IRValue) (Payload[M], error) {
	var p Payload[M]
	if err := ir.Decode(snapshot, &p); err != nil {
		return Payload[M]{}, &SnapshotError{Part: "payload", Err: err}
	}
	return p, nil
}

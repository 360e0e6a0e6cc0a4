package engine

import "github.com/roach88/turnkit/internal/ir"

// staging is the exclusively owned mutable copy of a payload that one
// transition works on. It is decoded fresh from the committed snapshot, so
// nothing it touches is shared with the game, and it is dropped on any
// failure before commit.
type staging[M any] struct {
	model    M
	decision Decision // the decision being answered
	adopted  *Decision
	queue    *pendingQueue
	log      []LogEntry
	logStart int // first log entry written by this transition
	logErr   error
	closed   bool
}

func openStaging[M any](p Payload[M]) *staging[M] {
	return &staging[M]{
		model:    p.Model,
		decision: p.Decision,
		queue:    newPendingQueue(p.Next),
		log:      p.Log,
		logStart: len(p.Log),
	}
}

// logger returns the Logger reducers write to for this transition.
// Entries carry no history id until stamp.
func (s *staging[M]) logger() Logger {
	return stagedLogger{entries: &s.log, err: &s.logErr, closed: &s.closed}
}

// absorb applies a reducer result: produced entries go to the back of the
// queue and a produced decision is adopted.
func (s *staging[M]) absorb(r Result) {
	s.queue.push(r.Next...)
	if r.Decision != nil {
		d := *r.Decision
		s.adopted = &d
	}
}

// close materializes the staging copy. The staging copy is unusable after.
func (s *staging[M]) close() Payload[M] {
	s.closed = true
	return Payload[M]{
		Model:    s.model,
		Decision: *s.adopted,
		Next:     s.queue.snapshot(),
		Log:      s.log,
	}
}

// stamp sets id on the log entries this transition wrote into snap.
func (s *staging[M]) stamp(snap ir.IRObject, id string) {
	log, _ := snap["log"].(ir.IRArray)
	for i := s.logStart; i < len(log); i++ {
		if entry, ok := log[i].(ir.IRObject); ok {
			entry["historyObjectID"] = ir.IRString(id)
		}
	}
}

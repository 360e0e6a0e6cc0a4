package engine

// pendingQueue is the FIFO of NextEntries owned by a staging copy.
//
// Entries produced by a reducer are appended to the back; draining takes
// from the front, so the first entry produced is the first resolved.
type pendingQueue struct {
	entries []NextEntry
}

func newPendingQueue(initial []NextEntry) *pendingQueue {
	q := &pendingQueue{entries: make([]NextEntry, 0, len(initial)+8)}
	q.push(initial...)
	return q
}

// push appends entries to the back, preserving their order.
func (q *pendingQueue) push(entries ...NextEntry) {
	q.entries = append(q.entries, entries...)
}

// pop removes and returns the front entry.
func (q *pendingQueue) pop() (NextEntry, bool) {
	if len(q.entries) == 0 {
		return NextEntry{}, false
	}
	e := q.entries[0]
	// Release the slot so the backing array does not pin drained fields.
	q.entries[0] = NextEntry{}
	if len(q.entries) == 1 {
		q.entries = q.entries[:0]
	} else {
		q.entries = q.entries[1:]
	}
	return e, true
}

func (q *pendingQueue) len() int {
	return len(q.entries)
}

// snapshot returns the remaining entries in order.
func (q *pendingQueue) snapshot() []NextEntry {
	out := make([]NextEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

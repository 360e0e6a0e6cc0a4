package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingQueue_FIFO(t *testing.T) {
	q := newPendingQueue(Entries(NewInterrupt("A")))
	q.push(Entries(NewInterrupt("B"), NewDecision("C"))...)
	assert.Equal(t, 3, q.len())

	var order []string
	for {
		e, ok := q.pop()
		if !ok {
			break
		}
		order = append(order, e.Value.Type)
		if e.Value.Type == "A" {
			q.push(Entries(NewInterrupt("D"))...)
		}
	}

	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
	assert.Equal(t, 0, q.len())
}

func TestPendingQueue_SnapshotIsCopy(t *testing.T) {
	q := newPendingQueue(Entries(NewInterrupt("A"), NewInterrupt("B")))
	snap := q.snapshot()

	q.pop()
	assert.Len(t, snap, 2)
	assert.Equal(t, "A", snap[0].Value.Type)
	assert.Equal(t, []NextEntry{{Kind: KindInterrupt, Value: NewInterrupt("B").Variant}}, q.snapshot())
}

func TestPendingQueue_PopEmpty(t *testing.T) {
	q := newPendingQueue(nil)
	_, ok := q.pop()
	assert.False(t, ok)
	assert.Empty(t, q.snapshot())
}

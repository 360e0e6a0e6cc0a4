package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/engine"
)

var _ engine.IDGenerator = (*Counter)(nil)

func TestCounter_Sequence(t *testing.T) {
	c := NewCounter("g")
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, "g-1", c.Generate())
	assert.Equal(t, "g-2", c.Generate())
	assert.Equal(t, 2, c.Current())
}

func TestCounter_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "t-1", NewCounter("").Generate())
}

func TestCounter_Reset(t *testing.T) {
	c := NewCounter("g")
	c.Generate()
	c.Generate()

	c.Reset()
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, "g-1", c.Generate())
}

func TestCounter_ThreadSafe(t *testing.T) {
	c := NewCounter("g")
	const goroutines = 50
	const calls = 100

	var wg sync.WaitGroup
	results := make([][]string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				results[idx] = append(results[idx], c.Generate())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ids := range results {
		for _, id := range ids {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, goroutines*calls)
	assert.Equal(t, goroutines*calls, c.Current())
}

package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.Generate()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("h-a", "h-b")
	assert.Equal(t, "h-a", g.Generate())
	assert.Equal(t, "h-b", g.Generate())
	assert.PanicsWithValue(t, "FixedGenerator: all ids exhausted", func() { g.Generate() })
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("step")
	assert.Equal(t, "step-1", g.Generate())
	assert.Equal(t, "step-2", g.Generate())
}

func TestFixedGenerator_DrivesEngine(t *testing.T) {
	e, err := New(coinFlipRules(), WithLogger(quietLogger()), WithIDGenerator(NewFixedGenerator("first", "second")))
	require.NoError(t, err)
	g, err := e.NewGame(noOptions{})
	require.NoError(t, err)

	require.NoError(t, e.ReduceChoice(g, flip("heads")))
	require.NoError(t, e.ReduceChoice(g, flip("tails")))

	h := g.History()
	assert.Equal(t, "first", h[0].ID)
	assert.Equal(t, "second", h[1].ID)
}

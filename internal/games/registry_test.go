package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/testutil"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"coinflip", "race"}, Names())
}

func TestLookupAndOpen(t *testing.T) {
	def, ok := Lookup("race")
	require.True(t, ok)
	assert.Equal(t, "race", def.Name())
	assert.NotEmpty(t, def.Description())

	s := testutil.Open(t, def, map[string]any{"players": []any{"ada", "bob"}, "goal": 5})
	assert.Equal(t, "AwaitingRoll", s.Decision().Type)

	testutil.MustReduce(t, s, map[string]any{"type": "Roll", "pips": 5})
	assert.Equal(t, "GameOver", s.Decision().Type)
	assert.Len(t, s.History(), 1)
	assert.Equal(t, "t-1", s.History()[0].ID)

	_, ok = Lookup("chess")
	assert.False(t, ok)
}

func TestOpen_RejectsUnknownOptions(t *testing.T) {
	def, _ := Lookup("race")
	_, err := def.Open(map[string]any{"players": []any{"ada", "bob"}, "board": "hex"})
	assert.Error(t, err)
}

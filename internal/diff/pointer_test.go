package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/ir"
)

func TestJoinAndSplit(t *testing.T) {
	p := Join("", "model", "a/b", "m~n", "0")
	assert.Equal(t, "/model/a~1b/m~0n/0", p)

	tokens, err := Split(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "a/b", "m~n", "0"}, tokens)

	tokens, err = Split("")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	_, err = Split("model")
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestGet(t *testing.T) {
	doc := ir.IRObject{
		"model": ir.IRObject{
			"flips": ir.IRArray{ir.IRString("heads"), ir.IRString("tails")},
		},
	}

	v, err := Get(doc, "/model/flips/1")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("tails"), v)

	v, err = Get(doc, "")
	require.NoError(t, err)
	assert.Equal(t, doc, v)

	_, err = Get(doc, "/model/flips/2")
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = Get(doc, "/model/score")
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = Get(doc, "/model/flips/0/x")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/ir"
)

func TestApply_DoesNotMutateInput(t *testing.T) {
	flips := ir.IRArray{ir.IRString("heads")}
	model := ir.IRObject{"flips": flips}
	root := ir.IRObject{"model": model}

	out, err := Apply(root, Edits{
		{Op: OpAdd, Path: "/model/flips/1", Value: ir.IRString("tails")},
		{Op: OpReplace, Path: "/model/flips/0", Value: ir.IRString("edge")},
		{Op: OpAdd, Path: "/turn", Value: ir.IRInt(1)},
	})
	require.NoError(t, err)

	assert.Equal(t, ir.IRObject{"model": ir.IRObject{"flips": ir.IRArray{ir.IRString("heads")}}}, root)
	assert.Len(t, flips, 1)
	assert.Equal(t, ir.IRString("heads"), flips[0])

	assert.Equal(t, ir.IRObject{
		"model": ir.IRObject{"flips": ir.IRArray{ir.IRString("edge"), ir.IRString("tails")}},
		"turn":  ir.IRInt(1),
	}, out)
}

func TestApply_ArrayInsertAndAppend(t *testing.T) {
	out, err := Apply(ir.IRArray{ir.IRInt(1), ir.IRInt(3)}, Edits{
		{Op: OpAdd, Path: "/1", Value: ir.IRInt(2)},
		{Op: OpAdd, Path: "/-", Value: ir.IRInt(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRInt(1), ir.IRInt(2), ir.IRInt(3), ir.IRInt(4)}, out)
}

func TestApply_Errors(t *testing.T) {
	doc := ir.IRObject{
		"flips": ir.IRArray{ir.IRString("heads")},
		"turn":  ir.IRInt(1),
	}

	tests := []struct {
		name    string
		edit    Edit
		wantErr error
	}{
		{"remove root", Edit{Op: OpRemove, Path: ""}, ErrInvalidEdit},
		{"unknown op", Edit{Op: "move", Path: "/turn"}, ErrInvalidEdit},
		{"pointer without slash", Edit{Op: OpReplace, Path: "turn", Value: ir.IRInt(2)}, ErrInvalidPointer},
		{"replace missing member", Edit{Op: OpReplace, Path: "/round", Value: ir.IRInt(2)}, ErrPathNotFound},
		{"remove missing member", Edit{Op: OpRemove, Path: "/round"}, ErrPathNotFound},
		{"index out of range", Edit{Op: OpReplace, Path: "/flips/1", Value: ir.IRString("x")}, ErrPathNotFound},
		{"insert past end", Edit{Op: OpAdd, Path: "/flips/2", Value: ir.IRString("x")}, ErrPathNotFound},
		{"leading zero index", Edit{Op: OpRemove, Path: "/flips/00"}, ErrInvalidPointer},
		{"descend into scalar", Edit{Op: OpAdd, Path: "/turn/x", Value: ir.IRInt(1)}, ErrPathNotFound},
		{"descend through missing member", Edit{Op: OpAdd, Path: "/round/x", Value: ir.IRInt(1)}, ErrPathNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(doc, Edits{tt.edit})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApply_EmptyEdits(t *testing.T) {
	doc := ir.IRObject{"turn": ir.IRInt(1)}
	out, err := Apply(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestEditString(t *testing.T) {
	assert.Equal(t, `add /model/flips/0 "heads"`, Edit{Op: OpAdd, Path: "/model/flips/0", Value: ir.IRString("heads")}.String())
	assert.Equal(t, "remove /next/0", Edit{Op: OpRemove, Path: "/next/0"}.String())
	assert.Equal(t, "replace (root) null", Edit{Op: OpReplace, Path: "", Value: ir.IRNull{}}.String())

	es := Edits{
		{Op: OpRemove, Path: "/a"},
		{Op: OpAdd, Path: "/b", Value: ir.IRInt(1)},
	}
	assert.Equal(t, "remove /a\nadd /b 1", es.String())
}

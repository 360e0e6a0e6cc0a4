package diff

import (
	"slices"
	"strconv"

	"github.com/roach88/turnkit/internal/ir"
)

// Diff computes the edit pair between before and after.
//
// Objects are compared member by member; arrays element by element over the
// common prefix, followed by tail additions or removals; anything else that
// differs is replaced wholesale. Equal inputs yield two empty lists.
func Diff(before, after ir.IRValue) (forward, inverse Edits) {
	d := &differ{}
	d.walk("", normalize(before), normalize(after))

	// Inverse edits undo forward edits last-first.
	slices.Reverse(d.inverse)
	return d.forward, d.inverse
}

type differ struct {
	forward Edits
	inverse Edits
}

func (d *differ) record(fwd, inv Edit) {
	d.forward = append(d.forward, fwd)
	d.inverse = append(d.inverse, inv)
}

func (d *differ) walk(path string, before, after ir.IRValue) {
	switch b := before.(type) {
	case ir.IRObject:
		if a, ok := after.(ir.IRObject); ok {
			d.object(path, b, a)
			return
		}
	case ir.IRArray:
		if a, ok := after.(ir.IRArray); ok {
			d.array(path, b, a)
			return
		}
	}

	if !ir.Equal(before, after) {
		d.record(
			Edit{Op: OpReplace, Path: path, Value: after},
			Edit{Op: OpReplace, Path: path, Value: before},
		)
	}
}

func (d *differ) object(path string, before, after ir.IRObject) {
	union := make(ir.IRObject, len(before)+len(after))
	for k := range before {
		union[k] = nil
	}
	for k := range after {
		union[k] = nil
	}

	for _, k := range union.SortedKeys() {
		bv, inBefore := before[k]
		av, inAfter := after[k]
		p := Join(path, k)

		switch {
		case inBefore && inAfter:
			d.walk(p, normalize(bv), normalize(av))
		case inBefore:
			d.record(
				Edit{Op: OpRemove, Path: p},
				Edit{Op: OpAdd, Path: p, Value: bv},
			)
		default:
			d.record(
				Edit{Op: OpAdd, Path: p, Value: av},
				Edit{Op: OpRemove, Path: p},
			)
		}
	}
}

func (d *differ) array(path string, before, after ir.IRArray) {
	common := min(len(before), len(after))
	for i := 0; i < common; i++ {
		d.walk(Join(path, strconv.Itoa(i)), normalize(before[i]), normalize(after[i]))
	}

	// Growth appends in ascending order; shrinkage removes from the tail so
	// earlier indices stay valid.
	for i := common; i < len(after); i++ {
		p := Join(path, strconv.Itoa(i))
		d.record(
			Edit{Op: OpAdd, Path: p, Value: after[i]},
			Edit{Op: OpRemove, Path: p},
		)
	}
	for i := len(before) - 1; i >= common; i-- {
		p := Join(path, strconv.Itoa(i))
		d.record(
			Edit{Op: OpRemove, Path: p},
			Edit{Op: OpAdd, Path: p, Value: before[i]},
		)
	}
}

func normalize(v ir.IRValue) ir.IRValue {
	if v == nil {
		return ir.IRNull{}
	}
	return v
}

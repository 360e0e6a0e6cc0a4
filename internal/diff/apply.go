package diff

import (
	"fmt"
	"slices"

	"github.com/roach88/turnkit/internal/ir"
)

// Apply applies edits to v in order and returns the result.
// v is never modified. On error the partially edited value is discarded.
func Apply(v ir.IRValue, edits Edits) (ir.IRValue, error) {
	cur := normalize(v)
	for i, e := range edits {
		tokens, err := Split(e.Path)
		if err != nil {
			return nil, fmt.Errorf("edit %d (%s): %w", i, e.Op, err)
		}
		next, err := applyAt(cur, tokens, e)
		if err != nil {
			return nil, fmt.Errorf("edit %d (%s %s): %w", i, e.Op, pathOrRoot(e.Path), err)
		}
		cur = next
	}
	return cur, nil
}

// applyAt returns a copy of node with e applied at the location named by tokens.
func applyAt(node ir.IRValue, tokens []string, e Edit) (ir.IRValue, error) {
	if len(tokens) == 0 {
		switch e.Op {
		case OpAdd, OpReplace:
			return normalize(e.Value), nil
		case OpRemove:
			return nil, fmt.Errorf("%w: cannot remove the root", ErrInvalidEdit)
		default:
			return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
		}
	}

	tok, rest := tokens[0], tokens[1:]
	switch n := node.(type) {
	case ir.IRObject:
		return applyObject(n, tok, rest, e)
	case ir.IRArray:
		return applyArray(n, tok, rest, e)
	default:
		return nil, fmt.Errorf("%w: cannot descend into %s at %q", ErrPathNotFound, kindOf(node), tok)
	}
}

func applyObject(obj ir.IRObject, key string, rest []string, e Edit) (ir.IRValue, error) {
	child, exists := obj[key]
	out := make(ir.IRObject, len(obj)+1)
	for k, v := range obj {
		out[k] = v
	}

	if len(rest) > 0 {
		if !exists {
			return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, key)
		}
		updated, err := applyAt(child, rest, e)
		if err != nil {
			return nil, err
		}
		out[key] = updated
		return out, nil
	}

	switch e.Op {
	case OpAdd:
		out[key] = normalize(e.Value)
	case OpReplace:
		if !exists {
			return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, key)
		}
		out[key] = normalize(e.Value)
	case OpRemove:
		if !exists {
			return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, key)
		}
		delete(out, key)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
	}
	return out, nil
}

func applyArray(arr ir.IRArray, tok string, rest []string, e Edit) (ir.IRValue, error) {
	if len(rest) > 0 {
		idx, err := parseIndex(tok, len(arr)-1)
		if err != nil {
			return nil, err
		}
		updated, err := applyAt(arr[idx], rest, e)
		if err != nil {
			return nil, err
		}
		out := slices.Clone(arr)
		out[idx] = updated
		return out, nil
	}

	switch e.Op {
	case OpAdd:
		idx := len(arr)
		if tok != "-" {
			var err error
			if idx, err = parseIndex(tok, len(arr)); err != nil {
				return nil, err
			}
		}
		out := make(ir.IRArray, 0, len(arr)+1)
		out = append(out, arr[:idx]...)
		out = append(out, normalize(e.Value))
		out = append(out, arr[idx:]...)
		return out, nil
	case OpReplace:
		idx, err := parseIndex(tok, len(arr)-1)
		if err != nil {
			return nil, err
		}
		out := slices.Clone(arr)
		out[idx] = normalize(e.Value)
		return out, nil
	case OpRemove:
		idx, err := parseIndex(tok, len(arr)-1)
		if err != nil {
			return nil, err
		}
		out := make(ir.IRArray, 0, len(arr)-1)
		out = append(out, arr[:idx]...)
		out = append(out, arr[idx+1:]...)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
	}
}

package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/turnkit/internal/ir"
)

var (
	// ErrInvalidPointer indicates a malformed JSON Pointer or array index.
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrPathNotFound indicates an edit addressed a location that does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidEdit indicates an edit that cannot be applied as written.
	ErrInvalidEdit = errors.New("invalid edit")
)

// Op is an edit operation.
type Op string

const (
	// OpAdd inserts into an array or sets an object member.
	OpAdd Op = "add"
	// OpRemove deletes an array element or object member.
	OpRemove Op = "remove"
	// OpReplace overwrites an existing location.
	OpReplace Op = "replace"
)

// Edit is a single structural change.
type Edit struct {
	Op    Op         `json:"op"`
	Path  string     `json:"path"`
	Value ir.IRValue `json:"value,omitempty"` // nil for remove
}

// String renders the edit for traces, e.g. `add /model/flips/0 "heads"`.
func (e Edit) String() string {
	if e.Op == OpRemove {
		return fmt.Sprintf("%s %s", e.Op, pathOrRoot(e.Path))
	}
	val, err := ir.MarshalIRValue(e.Value)
	if err != nil {
		val = []byte(fmt.Sprintf("<%v>", err))
	}
	return fmt.Sprintf("%s %s %s", e.Op, pathOrRoot(e.Path), val)
}

func pathOrRoot(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

// Edits is an ordered edit list. Order matters: each edit applies to the
// result of the previous one.
type Edits []Edit

// String renders one edit per line.
func (es Edits) String() string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// Paths returns the path of every edit, in order.
func (es Edits) Paths() []string {
	paths := make([]string, len(es))
	for i, e := range es {
		paths[i] = e.Path
	}
	return paths
}

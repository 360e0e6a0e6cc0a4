package rules

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/turnkit/internal/ir"
)

// Schema is a Rule backed by a CUE value.
//
// A Schema owns its cue.Context and is not safe for concurrent use.
type Schema struct {
	ctx    *cue.Context
	schema cue.Value
	src    string
}

// CompileError reports CUE source that failed to compile.
type CompileError struct {
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("schema:%d:%d: %s", e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

// Compile builds a Schema from CUE source.
func Compile(src string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return &Schema{ctx: ctx, schema: v, src: src}, nil
}

// Compilef formats CUE source with fmt.Sprintf and compiles it.
func Compilef(format string, args ...any) (*Schema, error) {
	return Compile(fmt.Sprintf(format, args...))
}

// MustCompile is Compile that panics on error.
// Only use it for schemas fixed at program start.
func MustCompile(src string) *Schema {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Source returns the CUE source the schema was compiled from.
func (s *Schema) Source() string {
	return s.src
}

// Check unifies raw with the schema and requires the result to be concrete.
// The returned value includes any defaults the schema supplies.
func (s *Schema) Check(raw ir.IRValue) (ir.IRValue, Issues) {
	data := s.ctx.Encode(ir.ToGo(raw))
	if err := data.Err(); err != nil {
		return nil, issuesFromCUE(err)
	}

	unified := s.schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, issuesFromCUE(err)
	}

	out, err := unified.MarshalJSON()
	if err != nil {
		return nil, issuesFromCUE(err)
	}
	val, err := ir.ParseJSON(out)
	if err != nil {
		return nil, Issues{{Message: err.Error()}}
	}
	return val, nil
}

// issuesFromCUE flattens a CUE error list into Issues, one per error.
func issuesFromCUE(err error) Issues {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return Issues{{Message: err.Error()}}
	}

	seen := make(map[Issue]bool, len(errs))
	issues := make(Issues, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		issue := Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[issue] {
			continue
		}
		seen[issue] = true
		issues = append(issues, issue)
	}
	return issues
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	ce := &CompileError{Message: fmt.Sprintf(format, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/turnkit/internal/ir"
)

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Join appends reference tokens to a JSON Pointer, escaping each one.
func Join(pointer string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(pointer)
	for _, tok := range tokens {
		b.WriteByte('/')
		b.WriteString(tokenEscaper.Replace(tok))
	}
	return b.String()
}

// Split parses a JSON Pointer into its unescaped reference tokens.
// The empty pointer addresses the root and yields no tokens.
func Split(pointer string) ([]string, error) {
	if pointer == "" {
		return nil, nil
	}
	if pointer[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPointer, pointer)
	}

	tokens := strings.Split(pointer[1:], "/")
	for i, tok := range tokens {
		tokens[i] = tokenUnescaper.Replace(tok)
	}
	return tokens, nil
}

// Get resolves pointer against v.
func Get(v ir.IRValue, pointer string) (ir.IRValue, error) {
	tokens, err := Split(pointer)
	if err != nil {
		return nil, err
	}

	cur := v
	for i, tok := range tokens {
		switch node := cur.(type) {
		case ir.IRObject:
			child, ok := node[tok]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrPathNotFound, Join("", tokens[:i+1]...))
			}
			cur = child
		case ir.IRArray:
			idx, err := parseIndex(tok, len(node)-1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", Join("", tokens[:i+1]...), err)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%w: %s traverses a %s", ErrPathNotFound, Join("", tokens[:i+1]...), kindOf(cur))
		}
	}
	return cur, nil
}

// parseIndex parses an array index token. The result must lie in [0, max].
func parseIndex(tok string, max int) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPointer, tok)
	}
	idx, err := strconv.Atoi(tok)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPointer, tok)
	}
	if idx > max {
		return 0, fmt.Errorf("%w: index %d out of range", ErrPathNotFound, idx)
	}
	return idx, nil
}

func kindOf(v ir.IRValue) string {
	switch v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return "string"
	case ir.IRInt:
		return "int"
	case ir.IRBool:
		return "bool"
	case ir.IRArray:
		return "array"
	case ir.IRObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

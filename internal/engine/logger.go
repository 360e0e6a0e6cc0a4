package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/turnkit/internal/ir"
)

// LogEntry is one game log line. MessageParts are the template split at
// its {} placeholders, so len(MessageParts) == len(Context)+1.
type LogEntry struct {
	HistoryObjectID string     `json:"historyObjectID"`
	MessageParts    []string   `json:"messageParts"`
	Context         ir.IRArray `json:"context"`
}

// IR returns the IR form of the entry.
func (l LogEntry) IR() ir.IRObject {
	parts := make(ir.IRArray, len(l.MessageParts))
	for i, p := range l.MessageParts {
		parts[i] = ir.IRString(p)
	}
	ctx := l.Context
	if ctx == nil {
		ctx = ir.IRArray{}
	}
	return ir.IRObject{
		"historyObjectID": ir.IRString(l.HistoryObjectID),
		"messageParts":    parts,
		"context":         ctx,
	}
}

// String interleaves message parts and context values:
// parts ["", " rolled ", ""] with context ["ada", 4] renders `"ada" rolled 4`.
func (l LogEntry) String() string {
	var b strings.Builder
	for i, part := range l.MessageParts {
		b.WriteString(part)
		if i < len(l.Context) {
			data, err := ir.MarshalIRValue(l.Context[i])
			if err != nil {
				data = []byte("?")
			}
			b.Write(data)
		}
	}
	// Extra context values beyond the placeholders are appended.
	for i := len(l.MessageParts); i < len(l.Context); i++ {
		data, err := ir.MarshalIRValue(l.Context[i])
		if err != nil {
			data = []byte("?")
		}
		b.WriteByte(' ')
		b.Write(data)
	}
	return b.String()
}

// Logger records game log entries from inside a reducer. Entries become
// part of the committed payload only if the transition commits.
type Logger interface {
	Log(template string, context ...any)
}

// stagedLogger appends to a staging copy's log.
//
// A context value that cannot be represented in IR is remembered and fails
// the transition at commit.
type stagedLogger struct {
	entries *[]LogEntry
	err     *error
	closed  *bool
}

func (l stagedLogger) Log(template string, context ...any) {
	if *l.closed {
		panic("engine: Logger used outside its transition")
	}

	ctx := make(ir.IRArray, len(context))
	for i, c := range context {
		v, err := ir.FromGo(c)
		if err != nil {
			if *l.err == nil {
				*l.err = fmt.Errorf("log %q context[%d]: %w", template, i, err)
			}
			v = ir.IRNull{}
		}
		ctx[i] = v
	}

	*l.entries = append(*l.entries, LogEntry{
		MessageParts: strings.Split(template, "{}"),
		Context:      ctx,
	})
}

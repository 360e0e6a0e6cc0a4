// Package testutil holds deterministic helpers for tests that drive games.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/session"
)

// QuietLogger discards all engine logs.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open starts def with quiet logging and ids "t-1", "t-2", ...
// Later opts override these defaults.
func Open(t testing.TB, def session.Definition, options map[string]any, opts ...engine.EngineOption) session.Session {
	t.Helper()
	all := append([]engine.EngineOption{
		engine.WithLogger(QuietLogger()),
		engine.WithIDGenerator(NewCounter("t")),
	}, opts...)

	s, err := def.Open(options, all...)
	require.NoError(t, err)
	return s
}

// MustReduce submits each choice in order and fails the test on the first
// error.
func MustReduce(t testing.TB, s session.Session, choices ...map[string]any) {
	t.Helper()
	for i, c := range choices {
		require.NoError(t, s.Reduce(c), "choice %d: %v", i+1, c)
	}
}

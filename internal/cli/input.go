package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/games"
	"github.com/roach88/turnkit/internal/session"
)

// GameFlags select a game's options and the choices played before the
// command does its work.
type GameFlags struct {
	Options  string   // JSON or YAML object
	Choices  []string // one JSON or YAML object each
	File     string   // YAML or JSON list of choice objects
	IDPrefix string   // deterministic history ids when set
}

func (g *GameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.Options, "options", "", `game options as a JSON object, e.g. '{"players":["ada","bob"]}'`)
	cmd.Flags().StringArrayVar(&g.Choices, "choice", nil, "choice as a JSON object (repeatable, applied in order)")
	cmd.Flags().StringVar(&g.File, "file", "", "file with a list of choices, applied before --choice")
	cmd.Flags().StringVar(&g.IDPrefix, "ids", "", "use sequential history ids with this prefix instead of UUIDs")
}

// choices returns the file's choices followed by the --choice values.
func (g *GameFlags) choices() ([]map[string]any, error) {
	var out []map[string]any
	if g.File != "" {
		data, err := os.ReadFile(g.File)
		if err != nil {
			return nil, fmt.Errorf("read choices: %w", err)
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse choices file %s: %w", g.File, err)
		}
	}
	for i, raw := range g.Choices {
		c, err := parseObject(raw)
		if err != nil {
			return nil, fmt.Errorf("--choice %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseObject parses a JSON or YAML object.
func parseObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("expected an object, got %q", raw)
	}
	return out, nil
}

// lookupGame finds a registered game or fails with a command error.
func lookupGame(name string) (session.Definition, error) {
	def, ok := games.Lookup(name)
	if !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown game %q (known: %v)", name, games.Names()))
	}
	return def, nil
}

// openGame starts a session for def using the game flags.
func openGame(def session.Definition, g *GameFlags, root *RootOptions, logger *slog.Logger, metrics *engine.Metrics) (session.Session, error) {
	var options map[string]any
	if g.Options != "" {
		o, err := parseObject(g.Options)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --options", err)
		}
		options = o
	}

	engineOpts := []engine.EngineOption{
		engine.WithMaxSteps(root.MaxSteps),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
	}
	if g.IDPrefix != "" {
		engineOpts = append(engineOpts, engine.WithIDGenerator(engine.NewSequenceGenerator(g.IDPrefix)))
	}

	sess, err := def.Open(options, engineOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start game", err)
	}
	return sess, nil
}

// Package session erases a game's model and option types so that tools
// which only see IR (the harness, the CLI) can drive any game.
package session

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/ir"
)

// Definition is a game that can be opened by name.
type Definition interface {
	Name() string
	Description() string

	// Open starts a new game. options is decoded into the game's option
	// type by json tag; nil means zero options.
	Open(options map[string]any, opts ...engine.EngineOption) (Session, error)
}

// Session is one running game seen through IR.
type Session interface {
	Name() string

	Validate(raw any) (engine.Choice, error)
	Reduce(raw any) error

	Decision() engine.Decision
	Snapshot() ir.IRObject
	Digest() string
	History() []engine.HistoryObject

	SnapshotByID(id string) (ir.IRObject, bool)
	SnapshotAfterID(id string) (ir.IRObject, bool)
}

// Define wraps typed rules as a Definition.
func Define[M, O any](rules engine.Rules[M, O], description string) Definition {
	return &definition[M, O]{rules: rules, description: description}
}

type definition[M, O any] struct {
	rules       engine.Rules[M, O]
	description string
}

func (d *definition[M, O]) Name() string        { return d.rules.Name }
func (d *definition[M, O]) Description() string { return d.description }

func (d *definition[M, O]) Open(options map[string]any, opts ...engine.EngineOption) (Session, error) {
	var o O
	if err := decodeOptions(options, &o); err != nil {
		return nil, fmt.Errorf("%s options: %w", d.rules.Name, err)
	}

	e, err := engine.New(d.rules, opts...)
	if err != nil {
		return nil, err
	}
	g, err := e.NewGame(o)
	if err != nil {
		return nil, err
	}
	return &session[M, O]{engine: e, game: g}, nil
}

func decodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(options)
}

type session[M, O any] struct {
	engine *engine.Engine[M, O]
	game   *engine.Game[M]
}

func (s *session[M, O]) Name() string { return s.engine.Name() }

func (s *session[M, O]) Validate(raw any) (engine.Choice, error) {
	return s.engine.ValidateChoice(s.game, raw)
}

func (s *session[M, O]) Reduce(raw any) error {
	return s.engine.ReduceChoice(s.game, raw)
}

func (s *session[M, O]) Decision() engine.Decision       { return s.game.Decision() }
func (s *session[M, O]) Snapshot() ir.IRObject           { return s.game.Snapshot() }
func (s *session[M, O]) Digest() string                  { return s.game.Digest() }
func (s *session[M, O]) History() []engine.HistoryObject { return s.game.History() }

func (s *session[M, O]) SnapshotByID(id string) (ir.IRObject, bool) {
	return s.game.SnapshotByID(id)
}

func (s *session[M, O]) SnapshotAfterID(id string) (ir.IRObject, bool) {
	return s.game.SnapshotAfterID(id)
}

// Package coinflip is the smallest complete game: every turn a player calls
// the result of a coin flip and it is appended to the model.
package coinflip

import (
	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/rules"
)

// Name is the registry name of the game.
const Name = "coinflip"

// Decision, choice and interrupt tags.
const (
	AwaitingFlip = "AwaitingFlip"
	Flip         = "Flip"
)

// Model is the coin flip game state.
type Model struct {
	Flips []string `json:"flips"`
}

// Options configures a new game. Coin flip has none.
type Options struct{}

type flipChoice struct {
	Result string `json:"result"`
}

var flipSchema = `close({type: "Flip", result: "heads" | "tails"})`

// Rules returns the coin flip rule set.
func Rules() engine.Rules[Model, Options] {
	return engine.Rules[Model, Options]{
		Name:         Name,
		DecisionTags: []string{AwaitingFlip},
		ChoiceValidators: map[string]engine.Validator[Model]{
			AwaitingFlip: func(Model, engine.Decision) (rules.Rule, error) {
				return rules.Compile(flipSchema)
			},
		},
		DecisionReducers: map[string]engine.DecisionReducer[Model]{
			AwaitingFlip: reduceFlip,
		},
		CreateInitialPayload: func(Options) (engine.Payload[Model], error) {
			return engine.Payload[Model]{
				Model:    Model{Flips: []string{}},
				Decision: engine.NewDecision(AwaitingFlip),
			}, nil
		},
	}
}

func reduceFlip(m *Model, _ engine.Decision, c engine.Choice, log engine.Logger) (engine.Result, error) {
	var flip flipChoice
	if err := c.Decode(&flip); err != nil {
		return engine.Result{}, err
	}
	m.Flips = append(m.Flips, flip.Result)
	log.Log("flip {} came up {}", len(m.Flips), flip.Result)
	return engine.Decide(engine.NewDecision(AwaitingFlip)), nil
}

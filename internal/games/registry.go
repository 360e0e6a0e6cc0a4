// Package games registers the built-in games by name.
package games

import (
	"sort"

	"github.com/roach88/turnkit/internal/games/coinflip"
	"github.com/roach88/turnkit/internal/games/race"
	"github.com/roach88/turnkit/internal/session"
)

var registry = map[string]session.Definition{
	coinflip.Name: session.Define(coinflip.Rules(), "Call coin flips; each call is appended to the model."),
	race.Name:     session.Define(race.Rules(), "Dice race to a goal with bumping and bonus turns."),
}

// Lookup returns the named game.
func Lookup(name string) (session.Definition, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns the registered game names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

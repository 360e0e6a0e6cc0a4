// Package race is a dice race: players take turns declaring a die roll and
// moving that many spaces toward the goal.
//
// Landing on an occupied space sends the occupant back to the start.
// Rolling the die's top face earns another turn. The first player to reach
// the goal wins.
//
// Every move runs through interrupts: a Roll schedules Advance, Advance
// schedules SendBack for each bumped player and then EndTurn. When the
// mover reaches the goal nothing further is scheduled and the fallback
// decision ends the game.
package race

import (
	"errors"
	"fmt"

	"github.com/roach88/turnkit/internal/engine"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/rules"
)

// Name is the registry name of the game.
const Name = "race"

// Decision tags.
const (
	AwaitingRoll = "AwaitingRoll"
	GameOver     = "GameOver"
)

// Choice tags.
const (
	Roll = "Roll"
	Pass = "Pass"
)

// Interrupt tags.
const (
	Advance  = "Advance"
	SendBack = "SendBack"
	EndTurn  = "EndTurn"
)

const (
	defaultGoal  = 20
	defaultSides = 6
)

// Player is one racer.
type Player struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Model is the race state.
type Model struct {
	Players []Player `json:"players"`
	Turn    int      `json:"turn"` // index into Players
	Goal    int      `json:"goal"`
	Sides   int      `json:"sides"`
	Winner  *string  `json:"winner"`
}

// Options configures a new race.
type Options struct {
	Players []string `json:"players"`
	Goal    int      `json:"goal"`
	Sides   int      `json:"sides"`
}

type rollChoice struct {
	Pips int `json:"pips"`
}

type advanceInterrupt struct {
	Player int  `json:"player"`
	By     int  `json:"by"`
	Extra  bool `json:"extra"`
}

type playerInterrupt struct {
	Player int  `json:"player"`
	Extra  bool `json:"extra"`
}

// Rules returns the race rule set.
func Rules() engine.Rules[Model, Options] {
	return engine.Rules[Model, Options]{
		Name:          Name,
		DecisionTags:  []string{AwaitingRoll, GameOver},
		InterruptTags: []string{Advance, SendBack, EndTurn},
		ChoiceValidators: map[string]engine.Validator[Model]{
			AwaitingRoll: validateRoll,
			GameOver: func(Model, engine.Decision) (rules.Rule, error) {
				return rules.Reject("the race is over"), nil
			},
		},
		DecisionReducers: map[string]engine.DecisionReducer[Model]{
			AwaitingRoll: reduceRoll,
			GameOver: func(m *Model, d engine.Decision, _ engine.Choice, _ engine.Logger) (engine.Result, error) {
				return engine.Decide(d), nil
			},
		},
		InterruptReducers: map[string]engine.InterruptReducer[Model]{
			Advance:  reduceAdvance,
			SendBack: reduceSendBack,
			EndTurn:  reduceEndTurn,
		},
		CreateInitialPayload: newPayload,
		Fallback:             fallback,
	}
}

func newPayload(o Options) (engine.Payload[Model], error) {
	if len(o.Players) < 2 {
		return engine.Payload[Model]{}, errors.New("race needs at least two players")
	}
	seen := make(map[string]bool, len(o.Players))
	players := make([]Player, len(o.Players))
	for i, name := range o.Players {
		if name == "" || seen[name] {
			return engine.Payload[Model]{}, fmt.Errorf("player %d: name %q is empty or repeated", i, name)
		}
		seen[name] = true
		players[i] = Player{Name: name}
	}

	m := Model{Players: players, Goal: o.Goal, Sides: o.Sides}
	if m.Goal <= 0 {
		m.Goal = defaultGoal
	}
	if m.Sides <= 1 {
		m.Sides = defaultSides
	}

	return engine.Payload[Model]{
		Model:    m,
		Decision: awaitingRoll(m),
	}, nil
}

func awaitingRoll(m Model) engine.Decision {
	return engine.NewDecision(AwaitingRoll, ir.O("player", ir.IRString(m.Players[m.Turn].Name)))
}

// validateRoll bounds the roll by the die in play.
func validateRoll(m Model, _ engine.Decision) (rules.Rule, error) {
	return rules.Compilef(`close({type: "Roll", pips: int & >=1 & <=%d}) | close({type: "Pass"})`, m.Sides)
}

func reduceRoll(m *Model, _ engine.Decision, c engine.Choice, log engine.Logger) (engine.Result, error) {
	mover := m.Players[m.Turn].Name
	switch c.Type {
	case Pass:
		log.Log("{} passes", mover)
		return engine.Defer(engine.NewInterrupt(EndTurn, ir.O("player", ir.IRInt(m.Turn)), ir.O("extra", ir.IRBool(false)))), nil
	case Roll:
		var roll rollChoice
		if err := c.Decode(&roll); err != nil {
			return engine.Result{}, err
		}
		log.Log("{} rolls {}", mover, roll.Pips)
		return engine.Defer(engine.NewInterrupt(Advance,
			ir.O("player", ir.IRInt(m.Turn)),
			ir.O("by", ir.IRInt(roll.Pips)),
			ir.O("extra", ir.IRBool(roll.Pips == m.Sides)),
		)), nil
	default:
		return engine.Result{}, fmt.Errorf("unexpected choice %q", c.Type)
	}
}

func reduceAdvance(m *Model, i engine.Interrupt, log engine.Logger) (engine.Result, error) {
	var adv advanceInterrupt
	if err := i.Decode(&adv); err != nil {
		return engine.Result{}, err
	}
	p := &m.Players[adv.Player]
	p.Position = min(p.Position+adv.By, m.Goal)
	log.Log("{} moves to {}", p.Name, p.Position)

	if p.Position == m.Goal {
		winner := p.Name
		m.Winner = &winner
		log.Log("{} wins", winner)
		return engine.NoProgress(), nil
	}

	var next []engine.Queueable
	for idx, other := range m.Players {
		if idx != adv.Player && other.Position == p.Position {
			next = append(next, engine.NewInterrupt(SendBack, ir.O("player", ir.IRInt(idx))))
		}
	}
	next = append(next, engine.NewInterrupt(EndTurn,
		ir.O("player", ir.IRInt(adv.Player)),
		ir.O("extra", ir.IRBool(adv.Extra)),
	))
	return engine.Defer(next...), nil
}

func reduceSendBack(m *Model, i engine.Interrupt, log engine.Logger) (engine.Result, error) {
	var sb playerInterrupt
	if err := i.Decode(&sb); err != nil {
		return engine.Result{}, err
	}
	m.Players[sb.Player].Position = 0
	log.Log("{} is sent back to the start", m.Players[sb.Player].Name)
	return engine.NoProgress(), nil
}

func reduceEndTurn(m *Model, i engine.Interrupt, log engine.Logger) (engine.Result, error) {
	var et playerInterrupt
	if err := i.Decode(&et); err != nil {
		return engine.Result{}, err
	}
	if et.Extra {
		log.Log("{} rolls again", m.Players[et.Player].Name)
	} else {
		m.Turn = (et.Player + 1) % len(m.Players)
	}
	return engine.Decide(awaitingRoll(*m)), nil
}

// fallback ends the game once there is a winner; otherwise the current
// player is asked to roll.
func fallback(m Model) engine.Decision {
	if m.Winner != nil {
		return engine.NewDecision(GameOver, ir.O("winner", ir.IRString(*m.Winner)))
	}
	return awaitingRoll(m)
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/turnkit/internal/games"
)

// Scenario defines a game run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Game is the registered game name.
	Game string `yaml:"game"`

	// Options are passed to the game's initializer.
	Options map[string]any `yaml:"options,omitempty"`

	// IDPrefix names history ids: <prefix>-1, <prefix>-2, ...
	// Defaults to "step".
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// MaxSteps overrides the engine's interrupt quota when positive.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final game.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one submitted choice.
type Step struct {
	Choice map[string]any `yaml:"choice"`

	// Expect is ok (default), invalid or error.
	Expect string `yaml:"expect,omitempty"`
}

// Step expectations.
const (
	ExpectOK      = "ok"
	ExpectInvalid = "invalid"
	ExpectError   = "error"
)

// Assertion checks the final game.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Tag is the expected decision tag (decision).
	Tag string `yaml:"tag,omitempty"`

	// Fields are expected decision fields, subset match (decision).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Path is a JSON Pointer into the model (model, state_by_step).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path (model, state_by_step).
	Equals any `yaml:"equals,omitempty"`

	// Count is the expected history length (history_length).
	Count int `yaml:"count,omitempty"`

	// Text is the expected log substring (log_contains).
	Text string `yaml:"text,omitempty"`

	// Step is the 1-based committed step (state_by_step).
	Step int `yaml:"step,omitempty"`
}

// Assertion type constants.
const (
	AssertDecision      = "decision"
	AssertModel         = "model"
	AssertHistoryLength = "history_length"
	AssertLogContains   = "log_contains"
	AssertStateByStep   = "state_by_step"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Game == "" {
		return fmt.Errorf("game is required")
	}
	if _, ok := games.Lookup(s.Game); !ok {
		return fmt.Errorf("unknown game %q (known: %v)", s.Game, games.Names())
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	for i, step := range s.Steps {
		if step.Choice == nil {
			return fmt.Errorf("steps[%d]: choice is required", i)
		}
		switch step.Expect {
		case "", ExpectOK, ExpectInvalid, ExpectError:
		default:
			return fmt.Errorf("steps[%d]: expect must be ok, invalid or error, got %q", i, step.Expect)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDecision:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for decision", index)
		}
	case AssertModel:
		// An empty path addresses the whole model.
	case AssertHistoryLength:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_length", index)
		}
	case AssertLogContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for log_contains", index)
		}
	case AssertStateByStep:
		if a.Step < 1 {
			return fmt.Errorf("assertions[%d]: step must be at least 1 for state_by_step", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

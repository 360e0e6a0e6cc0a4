package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/turnkit/internal/diff"
	"github.com/roach88/turnkit/internal/ir"
	"github.com/roach88/turnkit/internal/rules"
)

// DefaultMaxSteps is the default maximum number of interrupts resolved in
// one transition.
const DefaultMaxSteps = 1000

// Validator builds the rule a choice must satisfy, from the model and the
// decision being answered. The model is a private copy.
type Validator[M any] func(model M, decision Decision) (rules.Rule, error)

// DecisionReducer answers a decision with a validated choice by mutating
// the staging model.
type DecisionReducer[M any] func(model *M, decision Decision, choice Choice, log Logger) (Result, error)

// InterruptReducer resolves a queued interrupt by mutating the staging model.
type InterruptReducer[M any] func(model *M, interrupt Interrupt, log Logger) (Result, error)

// Rules declares a game: its tag sets, the per-tag handler tables, the
// initializer and an optional fallback.
//
// M is the model type; O is the type of the options NewGame accepts.
type Rules[M, O any] struct {
	// Name labels log lines and metrics.
	Name string

	DecisionTags  []string
	InterruptTags []string

	ChoiceValidators  map[string]Validator[M]
	DecisionReducers  map[string]DecisionReducer[M]
	InterruptReducers map[string]InterruptReducer[M]

	CreateInitialPayload func(opts O) (Payload[M], error)

	// Fallback produces a decision when the queue drains without one.
	// Without it, such a transition fails with NO_PROGRESS.
	Fallback func(model M) Decision
}

// Engine runs transitions for one game's Rules.
//
// An Engine is immutable after New and safe to share between goroutines;
// the Games it operates on are not.
//
// INVARIANTS:
//   - ValidateChoice never mutates the game
//   - ReduceChoice either commits exactly one payload and history entry, or
//     returns an error with the game unchanged
//   - The pending queue drains first-in, first-out
type Engine[M, O any] struct {
	rules    Rules[M, O]
	ids      IDGenerator
	logger   *slog.Logger
	metrics  *Metrics
	maxSteps int
}

type engineOptions struct {
	ids      IDGenerator
	logger   *slog.Logger
	metrics  *Metrics
	maxSteps int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*engineOptions)

// WithMaxSteps sets the maximum interrupts resolved per transition.
// New rejects values below 1.
//
// Default: 1000 (DefaultMaxSteps).
func WithMaxSteps(maxSteps int) EngineOption {
	return func(o *engineOptions) {
		o.maxSteps = maxSteps
	}
}

// WithLogger sets the operational logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithIDGenerator sets the history id source. Default: UUIDGenerator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(o *engineOptions) {
		o.ids = g
	}
}

// WithMetrics records transitions to m.
func WithMetrics(m *Metrics) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// New checks r for exhaustiveness and creates an Engine.
//
// Every declared decision tag needs a validator and a decision reducer,
// every declared interrupt tag needs an interrupt reducer, and no table may
// hold a tag that is not declared. All problems are reported together as
// one INCOMPLETE_TABLES ConfigurationError.
func New[M, O any](r Rules[M, O], opts ...EngineOption) (*Engine[M, O], error) {
	if err := checkTables(r); err != nil {
		return nil, err
	}

	o := engineOptions{
		ids:      UUIDGenerator{},
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSteps <= 0 {
		return nil, &ConfigurationError{
			Code:    ErrCodeInvalidMaxSteps,
			Message: fmt.Sprintf("max steps must be positive, got %d", o.maxSteps),
		}
	}

	// Copy the tables so later edits by the caller cannot change dispatch.
	r.DecisionTags = slices.Clone(r.DecisionTags)
	r.InterruptTags = slices.Clone(r.InterruptTags)
	r.ChoiceValidators = cloneMap(r.ChoiceValidators)
	r.DecisionReducers = cloneMap(r.DecisionReducers)
	r.InterruptReducers = cloneMap(r.InterruptReducers)

	return &Engine[M, O]{
		rules:    r,
		ids:      o.ids,
		logger:   o.logger.With("game", r.Name),
		metrics:  o.metrics,
		maxSteps: o.maxSteps,
	}, nil
}

func checkTables[M, O any](r Rules[M, O]) error {
	var problems []string

	if len(r.DecisionTags) == 0 {
		problems = append(problems, "no decision tags declared")
	}
	if r.CreateInitialPayload == nil {
		problems = append(problems, "no initial payload constructor")
	}

	decisions := make(map[string]bool, len(r.DecisionTags))
	for _, tag := range r.DecisionTags {
		decisions[tag] = true
		if _, ok := r.ChoiceValidators[tag]; !ok {
			problems = append(problems, fmt.Sprintf("decision %q has no choice validator", tag))
		}
		if _, ok := r.DecisionReducers[tag]; !ok {
			problems = append(problems, fmt.Sprintf("decision %q has no decision reducer", tag))
		}
	}

	interrupts := make(map[string]bool, len(r.InterruptTags))
	for _, tag := range r.InterruptTags {
		interrupts[tag] = true
		if _, ok := r.InterruptReducers[tag]; !ok {
			problems = append(problems, fmt.Sprintf("interrupt %q has no interrupt reducer", tag))
		}
	}

	for _, tag := range sortedKeys(r.ChoiceValidators) {
		if !decisions[tag] {
			problems = append(problems, fmt.Sprintf("choice validator for undeclared decision %q", tag))
		}
	}
	for _, tag := range sortedKeys(r.DecisionReducers) {
		if !decisions[tag] {
			problems = append(problems, fmt.Sprintf("decision reducer for undeclared decision %q", tag))
		}
	}
	for _, tag := range sortedKeys(r.InterruptReducers) {
		if !interrupts[tag] {
			problems = append(problems, fmt.Sprintf("interrupt reducer for undeclared interrupt %q", tag))
		}
	}

	if len(problems) > 0 {
		return newTablesError(problems)
	}
	return nil
}

// Name returns the game name from the rules.
func (e *Engine[M, O]) Name() string {
	return e.rules.Name
}

// DecisionTags returns the declared decision tags.
func (e *Engine[M, O]) DecisionTags() []string {
	return slices.Clone(e.rules.DecisionTags)
}

// InterruptTags returns the declared interrupt tags.
func (e *Engine[M, O]) InterruptTags() []string {
	return slices.Clone(e.rules.InterruptTags)
}

// NewGame creates a game from the designer's initializer.
func (e *Engine[M, O]) NewGame(opts O) (*Game[M], error) {
	p, err := e.rules.CreateInitialPayload(opts)
	if err != nil {
		return nil, fmt.Errorf("create initial payload: %w", err)
	}
	if p.Decision.Type == "" {
		return nil, &ConfigurationError{
			Code:    ErrCodeInvalidInitialPayload,
			Message: "initial payload has no decision",
		}
	}
	if err := e.checkPayload(p.Decision, p.Next); err != nil {
		err.Code = ErrCodeInvalidInitialPayload
		return nil, err
	}

	snap, err := snapshotOf(p)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("game created", "decision", p.Decision.Type, "pending", len(p.Next))
	return &Game[M]{state: snap}, nil
}

// ValidateChoice checks raw against the rule for the game's current
// decision and returns the validated Choice.
//
// raw may be a Choice, an ir.IRObject, a map, JSON text (json.RawMessage or
// []byte) or any JSON-encodable struct. Rejection is a *ValidationError.
// ValidateChoice never mutates the game.
func (e *Engine[M, O]) ValidateChoice(g *Game[M], raw any) (Choice, error) {
	p, err := decodePayload[M](g.state)
	if err != nil {
		return Choice{}, err
	}
	return e.validate(p.Model, p.Decision, raw)
}

func (e *Engine[M, O]) validate(model M, decision Decision, raw any) (Choice, error) {
	validator, ok := e.rules.ChoiceValidators[decision.Type]
	if !ok {
		return Choice{}, &ConfigurationError{
			Code:    ErrCodeMissingValidator,
			Message: "no choice validator registered",
			Tag:     decision.Type,
		}
	}

	rule, err := validator(model, decision)
	if err != nil {
		return Choice{}, fmt.Errorf("build validator for %s: %w", decision.Type, err)
	}

	reject := func(issues rules.Issues) (Choice, error) {
		e.metrics.validationFailure(e.rules.Name, decision.Type)
		e.logger.Debug("choice rejected", "decision", decision.Type, "issues", issues.String())
		return Choice{}, &ValidationError{Decision: decision.Type, Issues: issues}
	}

	in, err := choiceInput(raw)
	if err != nil {
		return reject(rules.Issues{{Message: err.Error()}})
	}

	out, issues := rule.Check(in)
	if len(issues) > 0 {
		return reject(issues)
	}

	v, err := variantFromIR(out)
	if err != nil {
		return reject(rules.Issues{{Path: "type", Message: err.Error()}})
	}
	return Choice{v}, nil
}

// choiceInput converts a raw choice to IR.
func choiceInput(raw any) (ir.IRValue, error) {
	switch c := raw.(type) {
	case Choice:
		return c.IR(), nil
	case *Choice:
		if c == nil {
			return ir.IRNull{}, nil
		}
		return c.IR(), nil
	case Variant:
		return c.IR(), nil
	}
	return ir.FromGo(raw)
}

// ReduceChoice validates raw and, if valid, runs one transition:
//
//  1. the decision reducer for the current decision runs on a staging copy
//  2. the entries it produces join the back of the pending queue
//  3. until a decision is adopted, the front entry is taken: a decision is
//     adopted, an interrupt is resolved by its reducer
//  4. with the queue empty and nothing adopted, Fallback supplies the decision
//  5. the staging copy is frozen, diffed against the committed state, and
//     committed with a new history entry
//
// The adopted decision must carry a declared decision tag, and every entry
// left queued a declared tag of its kind; otherwise nothing commits.
//
// Any error leaves the game unchanged and consumes no history id. Reducer
// errors are returned as-is; reducer panics propagate.
func (e *Engine[M, O]) ReduceChoice(g *Game[M], raw any) error {
	committed, err := decodePayload[M](g.state)
	if err != nil {
		return err
	}

	choice, err := e.ValidateChoice(g, raw)
	if err != nil {
		return err
	}

	st := openStaging(committed)
	defer func() { st.closed = true }()

	steps, err := e.run(st, choice)
	if err != nil {
		return err
	}
	if st.logErr != nil {
		e.metrics.aborted(e.rules.Name, "log")
		return &SnapshotError{Part: "log", Err: st.logErr}
	}
	if err := e.checkPayload(*st.adopted, st.queue.snapshot()); err != nil {
		e.metrics.aborted(e.rules.Name, "invalid_payload")
		return err
	}

	next := st.close()
	snap, err := snapshotOf(next)
	if err != nil {
		e.metrics.aborted(e.rules.Name, "snapshot")
		return err
	}

	// The id is drawn only once the transition is certain to commit.
	id := e.ids.Generate()
	st.stamp(snap, id)

	forward, inverse := diff.Diff(g.state, snap)

	// Commit. Nothing below can fail.
	g.history = append(g.history, HistoryObject{
		ID:      id,
		Seq:     len(g.history) + 1,
		Choice:  choice,
		Forward: forward,
		Inverse: inverse,
	})
	g.state = snap

	e.metrics.transition(e.rules.Name, committed.Decision.Type, steps)
	e.logger.Debug("transition committed",
		"id", id,
		"choice", choice.Type,
		"from", committed.Decision.Type,
		"to", next.Decision.Type,
		"steps", steps,
		"edits", len(forward),
	)
	return nil
}

// run drives the staging copy to an adopted decision and returns the number
// of interrupts resolved.
func (e *Engine[M, O]) run(st *staging[M], choice Choice) (int, error) {
	reducer, ok := e.rules.DecisionReducers[st.decision.Type]
	if !ok {
		return 0, &ConfigurationError{
			Code:    ErrCodeMissingDecisionReducer,
			Message: "no decision reducer registered",
			Tag:     st.decision.Type,
		}
	}

	res, err := reducer(&st.model, st.decision, choice, st.logger())
	if err != nil {
		e.metrics.aborted(e.rules.Name, "reducer")
		return 0, err
	}
	st.absorb(res)

	quota := NewQuotaEnforcer(e.maxSteps)
	for st.adopted == nil {
		entry, ok := st.queue.pop()
		if !ok {
			break
		}

		switch entry.Kind {
		case KindDecision:
			st.absorb(Decide(Decision{entry.Value}))
		case KindInterrupt:
			if err := quota.Check(entry.Value.Type); err != nil {
				e.metrics.aborted(e.rules.Name, "quota")
				e.logger.Error("transition exceeded step quota", "interrupt", entry.Value.Type, "limit", e.maxSteps)
				return quota.Current(), err
			}
			ireducer, ok := e.rules.InterruptReducers[entry.Value.Type]
			if !ok {
				return quota.Current(), &ConfigurationError{
					Code:    ErrCodeMissingInterruptReducer,
					Message: "no interrupt reducer registered",
					Tag:     entry.Value.Type,
				}
			}
			res, err := ireducer(&st.model, Interrupt{entry.Value}, st.logger())
			if err != nil {
				e.metrics.aborted(e.rules.Name, "reducer")
				return quota.Current(), err
			}
			e.metrics.interrupt(e.rules.Name, entry.Value.Type)
			st.absorb(res)
		default:
			return quota.Current(), fmt.Errorf("pending entry has unknown kind %q", entry.Kind)
		}
	}

	if st.adopted == nil {
		if e.rules.Fallback == nil {
			e.metrics.aborted(e.rules.Name, "no_progress")
			return quota.Current(), &ConfigurationError{
				Code:    ErrCodeNoProgress,
				Message: "pending queue drained without a decision and no fallback is configured",
				Tag:     st.decision.Type,
			}
		}
		d := e.rules.Fallback(st.model)
		if d.Type == "" {
			e.metrics.aborted(e.rules.Name, "no_progress")
			return quota.Current(), &ConfigurationError{
				Code:    ErrCodeNoProgress,
				Message: "fallback produced an empty decision",
				Tag:     st.decision.Type,
			}
		}
		st.absorb(Decide(d))
	}
	return quota.Current(), nil
}

// checkPayload reports an adopted decision or pending entry that a later
// transition could not dispatch.
func (e *Engine[M, O]) checkPayload(decision Decision, next []NextEntry) *ConfigurationError {
	if decision.Type == "" || !slices.Contains(e.rules.DecisionTags, decision.Type) {
		return &ConfigurationError{
			Code:    ErrCodeInvalidDecision,
			Message: "adopted decision is not a declared decision tag",
			Tag:     decision.Type,
		}
	}
	for i, n := range next {
		var declared []string
		switch n.Kind {
		case KindDecision:
			declared = e.rules.DecisionTags
		case KindInterrupt:
			declared = e.rules.InterruptTags
		}
		if n.Value.Type == "" || !slices.Contains(declared, n.Value.Type) {
			return &ConfigurationError{
				Code:    ErrCodeInvalidEntry,
				Message: fmt.Sprintf("pending entry %d (%s) is not a declared tag", i, n.Kind),
				Tag:     n.Value.Type,
			}
		}
	}
	return nil
}

// StateByID reconstructs the payload from just before the transition with
// the given id. Returns false if id is not in the history. Read-only.
func (e *Engine[M, O]) StateByID(g *Game[M], id string) (Payload[M], bool) {
	snap, ok := g.SnapshotByID(id)
	if !ok {
		return Payload[M]{}, false
	}
	return mustDecode[M](snap), true
}

// StateAfterID reconstructs the payload from just after the transition with
// the given id. Returns false if id is not in the history. Read-only.
func (e *Engine[M, O]) StateAfterID(g *Game[M], id string) (Payload[M], bool) {
	snap, ok := g.SnapshotAfterID(id)
	if !ok {
		return Payload[M]{}, false
	}
	return mustDecode[M](snap), true
}

func mustDecode[M any](snap ir.IRObject) Payload[M] {
	p, err := decodePayload[M](snap)
	if err != nil {
		panic(fmt.Sprintf("engine: reconstructed snapshot does not decode: %v", err))
	}
	return p
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

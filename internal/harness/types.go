package harness

// Step outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// TraceStep records what happened to one submitted choice.
type TraceStep struct {
	Step     int            `json:"step"`
	Choice   map[string]any `json:"choice"`
	Outcome  string         `json:"outcome"`
	ID       string         `json:"id,omitempty"`     // history id, when committed
	Decision string         `json:"decision"`         // active decision tag afterwards
	Edits    []string       `json:"edits,omitempty"`  // "op path" per forward edit
	Issues   []string       `json:"issues,omitempty"` // validation issues, when invalid
	Error    string         `json:"error,omitempty"`  // failure message, when error
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step met its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per step, in order.
	Trace []TraceStep `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Digest identifies the final state.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Committed returns the number of steps that committed.
func (r *Result) Committed() int {
	n := 0
	for _, s := range r.Trace {
		if s.Outcome == OutcomeCommitted {
			n++
		}
	}
	return n
}

package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer bounds the number of interrupts one transition may resolve.
//
// Interrupt reducers may schedule further interrupts, so a careless rule set
// can loop forever (A schedules B, B schedules A). The quota turns that into
// a reported failure instead of a hang.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
// tag names the interrupt about to be resolved.
func (q *QuotaEnforcer) Check(tag string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			Interrupt: tag,
			Steps:     q.current,
			Limit:     q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a transition resolves more interrupts
// than the quota allows. The transition is aborted and nothing commits.
type StepsExceededError struct {
	Interrupt string // The interrupt that would have exceeded the quota
	Steps     int
	Limit     int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("transition exceeded max steps quota at interrupt %s: %d steps > %d limit",
		e.Interrupt, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/turnkit/internal/rules"
)

// ValidationError reports a choice rejected by the Validation Gate.
//
// Validation failure is recoverable: the game is untouched and the caller
// may submit another choice.
type ValidationError struct {
	// Decision is the tag of the decision the choice answered.
	Decision string

	// Issues lists every reason the choice was rejected.
	Issues rules.Issues
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid choice for %s: %s", e.Decision, e.Issues)
}

// IsValidationError returns true if the error is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigurationErrorCode categorizes configuration errors.
type ConfigurationErrorCode string

const (
	// ErrCodeMissingValidator indicates no validator for the current decision tag.
	ErrCodeMissingValidator ConfigurationErrorCode = "MISSING_VALIDATOR"

	// ErrCodeMissingDecisionReducer indicates no reducer for the current decision tag.
	ErrCodeMissingDecisionReducer ConfigurationErrorCode = "MISSING_DECISION_REDUCER"

	// ErrCodeMissingInterruptReducer indicates no reducer for a queued interrupt tag.
	ErrCodeMissingInterruptReducer ConfigurationErrorCode = "MISSING_INTERRUPT_REDUCER"

	// ErrCodeNoProgress indicates the queue drained with no decision and no fallback.
	ErrCodeNoProgress ConfigurationErrorCode = "NO_PROGRESS"

	// ErrCodeIncompleteTables indicates the rule tables do not cover the declared tags.
	ErrCodeIncompleteTables ConfigurationErrorCode = "INCOMPLETE_TABLES"

	// ErrCodeInvalidInitialPayload indicates the initializer produced no decision,
	// an undeclared one, or an unusable pending entry.
	ErrCodeInvalidInitialPayload ConfigurationErrorCode = "INVALID_INITIAL_PAYLOAD"

	// ErrCodeInvalidDecision indicates a transition adopted an empty or
	// undeclared decision.
	ErrCodeInvalidDecision ConfigurationErrorCode = "INVALID_DECISION"

	// ErrCodeInvalidEntry indicates a transition would leave an empty or
	// undeclared entry in the pending queue.
	ErrCodeInvalidEntry ConfigurationErrorCode = "INVALID_ENTRY"

	// ErrCodeInvalidMaxSteps indicates a non-positive step quota.
	ErrCodeInvalidMaxSteps ConfigurationErrorCode = "INVALID_MAX_STEPS"
)

// ConfigurationError is a design-time defect in a game's rules: a table
// that is not exhaustive, or a transition that cannot reach a decision.
//
// Configuration errors are fatal. Retrying the same call fails the same way.
type ConfigurationError struct {
	Code    ConfigurationErrorCode
	Message string

	// Tag is the decision or interrupt tag involved, if any.
	Tag string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s (tag=%s)", e.Code, e.Message, e.Tag)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError returns true if the error is a ConfigurationError.
// Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// HasConfigurationCode returns true if err is a ConfigurationError with code.
func HasConfigurationCode(err error, code ConfigurationErrorCode) bool {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newTablesError(problems []string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeIncompleteTables,
		Message: strings.Join(problems, "; "),
	}
}

// SnapshotError reports a payload that cannot be frozen into a snapshot,
// e.g. a model holding a float.
type SnapshotError struct {
	// Part is "model", "log" or "payload".
	Part string
	Err  error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Part, e.Err)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// IsSnapshotError returns true if the error is a SnapshotError.
func IsSnapshotError(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se)
}

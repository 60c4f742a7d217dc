package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the reasoning engine. Collaborators distinguish exactly
// three failure classes: bad input, engine unusable, and internal defect.
var (
	// ErrInvalidInput marks a patient record field that fails its declared
	// range or type invariant. Rejected before the pure core is invoked.
	ErrInvalidInput = errors.New("invalid patient input")

	// ErrModelUnavailable marks a missing or corrupt scorer artifact.
	// Fatal at process start; there is no per-request fallback.
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrRuleEvaluation marks a failure inside the clinical rule base.
	// Predicates are pure over validated input, so this is a programming
	// defect rather than a recoverable runtime condition.
	ErrRuleEvaluation = errors.New("rule evaluation defect")
)

// ValidationError carries field-level detail for an invalid patient record.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap ties every validation failure to ErrInvalidInput so transport code
// can map the whole class with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

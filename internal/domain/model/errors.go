package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelUnavailable means the classifier could not be loaded or reached.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrAttribution means the explainer failed for a scored example.
	ErrAttribution = errors.New("attribution failed")
	// ErrPersistence means a prediction record could not be stored or read.
	ErrPersistence = errors.New("persistence failed")
)

// ValidationReason enumerates why an input field was rejected.
type ValidationReason string

const (
	ReasonInvalid    ValidationReason = "missing/invalid field"
	ReasonOutOfRange ValidationReason = "out of range"
)

// Violation is one rejected field.
type Violation struct {
	Field  string           `json:"field"`
	Reason ValidationReason `json:"reason"`
	Limit  string           `json:"limit,omitempty"`
}

func (v Violation) String() string {
	if v.Limit != "" {
		return fmt.Sprintf("%s: %s (%s)", v.Field, v.Reason, v.Limit)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

// ValidationError reports user-correctable input problems. Reason and Field
// describe the first violation in feature order; Violations holds all of them.
type ValidationError struct {
	Reason     ValidationReason
	Field      string
	Violations []Violation
}

// NewValidationError builds a ValidationError from a non-empty violation list.
func NewValidationError(violations []Violation) *ValidationError {
	first := violations[0]
	return &ValidationError{
		Reason:     first.Reason,
		Field:      first.Field,
		Violations: violations,
	}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return strings.Join(parts, "; ")
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

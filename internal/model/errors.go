package model

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a list id was never issued.
type NotFoundError struct {
	ID ListID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("list not found: %s", e.ID)
}

// ValidationError is returned when a submission is rejected.
// Nothing is created or appended when it occurs.
type ValidationError struct {
	Field  string
	Reason string
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

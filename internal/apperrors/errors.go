// Package apperrors defines the error taxonomy shared by the billing engine.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced contract, customer or tariff that is absent
// from the store. Handlers map it to 404.
var ErrNotFound = errors.New("record not found")

// ErrConflict marks a lost concurrent update on a contract document. The
// caller may re-read and retry. Handlers map it to 409.
var ErrConflict = errors.New("concurrent update conflict")

// ValidationError reports bad input to contract or billing-terms
// construction, always naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExternalSourceError wraps a failure talking to an external tariff source.
// The dynamic resolver recovers from it by falling through to the next tier;
// it is never surfaced to API callers.
type ExternalSourceError struct {
	Source string
	Err    error
}

func (e *ExternalSourceError) Error() string {
	return fmt.Sprintf("external source %s: %v", e.Source, e.Err)
}

func (e *ExternalSourceError) Unwrap() error { return e.Err }

// External wraps err as an ExternalSourceError for the named source.
func External(source string, err error) *ExternalSourceError {
	return &ExternalSourceError{Source: source, Err: err}
}

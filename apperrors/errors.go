// Package apperrors defines the error kinds shared between the service
// layer and the HTTP surface.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations that target a missing record.
var ErrNotFound = errors.New("not found")

// ErrConflict marks unique-constraint violations and optimistic-concurrency
// staleness detected at commit time.
var ErrConflict = errors.New("conflict")

// ValidationError reports bad input or a broken referential invariant,
// e.g. a product draft pointing at a category that does not exist.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a single field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundf wraps ErrNotFound with a formatted description of the missing
// record, so callers can still match with errors.Is.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with a formatted description.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

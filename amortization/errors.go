/*
errors.go - Error types for the amortization engine and its collaborators

ERROR CATEGORIES:
  1. Validation errors - Input rejected before any arithmetic
  2. Store errors - Lookup misses and missing store capabilities

USAGE:
  if errors.Is(err, amortization.ErrInvalidInput) {
      // 400
  }

Arithmetic edge cases (negative principal, oversized balloon) are NOT
errors. They fall through to early termination or a degenerate schedule.
*/
package amortization

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a LoanInput is missing a required
	// value or has a non-positive term.
	ErrInvalidInput = errors.New("invalid loan input")

	// ErrScheduleNotFound is returned when a stored schedule does not exist.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrStoreRequired is returned when an operation requires a store
	// capability the configured store does not have.
	ErrStoreRequired = errors.New("operation requires extended store interface")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid loan input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing schedule.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

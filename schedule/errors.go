/*
errors.go - Error types shared by the schedule math and the shifts domain

PURPOSE:
  All validation-class errors in one place. Higher layers classify errors
  by kind (validation / not-found / conflict) to pick a response shape,
  so every error here either is, or unwraps to, a sentinel.

SEE ALSO:
  - shifts/errors.go: domain-level sentinels (not found, conflicts)
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownZone is returned for a timezone identifier the IANA
	// database does not recognize.
	ErrUnknownZone = errors.New("unknown timezone")

	// ErrInvalidDateRange is returned when a range's start falls after its end.
	ErrInvalidDateRange = errors.New("invalid date range: start after end")

	// ErrNoEnabledDays is returned when expansion is requested for a
	// pattern with no enabled weekday.
	ErrNoEnabledDays = errors.New("at least one weekday must be enabled")

	// ErrRangeTooLarge is returned when a range exceeds MaxExpandDays.
	ErrRangeTooLarge = errors.New("date range too large to expand")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError carries a stable code plus a human-readable message.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnknownZoneError reports the offending identifier.
type UnknownZoneError struct {
	Zone string
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q", e.Zone)
}

func (e *UnknownZoneError) Unwrap() error { return ErrUnknownZone }

// IsValidation reports whether err is any input-validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnknownZone) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrNoEnabledDays) ||
		errors.Is(err, ErrRangeTooLarge)
}

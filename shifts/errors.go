package shifts

import (
	"errors"
	"fmt"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrContractNotFound is returned when a referenced contract doesn't exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrOccurrenceNotFound is returned when a referenced occurrence doesn't exist.
	ErrOccurrenceNotFound = errors.New("occurrence not found")

	// ErrInvalidTransition is returned for a status change that skips a
	// stage or moves backward.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyFinalized is returned when completing an occurrence that
	// already carries confirmed actual times.
	ErrAlreadyFinalized = errors.New("occurrence already finalized")

	// ErrDuplicateOccurrence is returned by stores when a second
	// contract-sourced occurrence lands on the same (contract, date) pair.
	ErrDuplicateOccurrence = errors.New("duplicate occurrence for contract and date")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TransitionError reports an illegal status change.
type TransitionError struct {
	From ContractStatus
	To   ContractStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition contract from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// CLASSIFICATION HELPERS - drive the 400/404/409 mapping at the boundary
// =============================================================================

// IsValidation reports whether err is invalid caller input.
func IsValidation(err error) bool {
	return schedule.IsValidation(err)
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrOccurrenceNotFound)
}

// IsConflict reports whether err is a state conflict with current data.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrDuplicateOccurrence)
}

/*
Package shifts is the contract and shift-occurrence domain of the engine.

PURPOSE:
  A Contract describes a weekly recurring availability pattern over a date
  range in some timezone, with pay rates. The engine materializes that
  pattern into persisted ShiftOccurrence records, keeps them reconciled as
  the contract changes, computes weekly payroll, and reports drift.

KEY CONCEPTS:
  - Contract:        The recurring schedule definition plus rates.
  - ShiftOccurrence: One concrete, date-stamped shift. Contract-sourced
                     occurrences are owned by the synchronizer; manual
                     ones are never touched by it.
  - Finalized:       An occurrence whose actual worked times have been
                     recorded. Immutable to the synchronizer thereafter.
  - Plan:            The create/update/delete diff a reconcile computes.

DESIGN PRINCIPLES:
  1. Money and hours use decimal.Decimal; no float arithmetic on pay.
  2. Status transitions are a closed table, not string comparisons.
  3. All persistence goes through the interfaces in store.go so the
     domain carries no global mutable state.

SEE ALSO:
  - sync.go:    the reconcile algorithm and its atomic application
  - payroll.go: weekly hours and overtime math
  - audit.go:   the read-only drift reporter
*/
package shifts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// CONTRACT STATUS - Closed enumeration with a forward-only transition table
// =============================================================================

type ContractStatus string

const (
	StatusPlanned  ContractStatus = "planned"
	StatusActive   ContractStatus = "active"
	StatusArchived ContractStatus = "archived"
)

// next holds the only legal forward step for each status. Transitions
// never skip a stage and never move backward.
var next = map[ContractStatus]ContractStatus{
	StatusPlanned: StatusActive,
	StatusActive:  StatusArchived,
}

// ParseStatus validates a wire-form status string.
func ParseStatus(s string) (ContractStatus, error) {
	switch ContractStatus(s) {
	case StatusPlanned, StatusActive, StatusArchived:
		return ContractStatus(s), nil
	}
	return "", &schedule.ValidationError{Code: "invalid_status", Message: fmt.Sprintf("unknown status %q", s)}
}

// CanTransition reports whether moving from s to target is legal.
// Staying put is always allowed.
func (s ContractStatus) CanTransition(target ContractStatus) bool {
	if s == target {
		return true
	}
	return next[s] == target
}

// =============================================================================
// CONTRACT
// =============================================================================

type Contract struct {
	ID       string
	Facility string
	Role     string

	StartDate schedule.Date
	EndDate   schedule.Date
	Timezone  string
	Pattern   schedule.WeeklyPattern

	BaseRate             decimal.Decimal
	OvertimeRate         decimal.Decimal
	WeeklyHoursThreshold decimal.Decimal

	Status    ContractStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the contract's own fields. Range and pattern expansion
// checks happen in schedule.Expand before anything is persisted.
func (c *Contract) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("%w: %s > %s", schedule.ErrInvalidDateRange, c.StartDate, c.EndDate)
	}
	if c.BaseRate.IsNegative() || c.OvertimeRate.IsNegative() {
		return &schedule.ValidationError{Code: "invalid_rate", Message: "rates must not be negative"}
	}
	if c.WeeklyHoursThreshold.IsNegative() {
		return &schedule.ValidationError{Code: "invalid_threshold", Message: "weekly hours threshold must not be negative"}
	}
	if _, err := schedule.ToUTC(c.StartDate, schedule.ClockTime{}, c.Timezone); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// SHIFT OCCURRENCE
// =============================================================================

type OccurrenceSource string

const (
	SourceContract OccurrenceSource = "contract"
	SourceManual   OccurrenceSource = "manual"
)

// ShiftOccurrence is one concrete shift. For contract-sourced occurrences
// the pair (ContractID, LocalDate) is unique and StartUTC < EndUTC always,
// with EndUTC falling on the next calendar day for overnight shifts.
type ShiftOccurrence struct {
	ID         string
	ContractID string // empty for manual occurrences
	LocalDate  schedule.Date
	StartUTC   time.Time
	EndUTC     time.Time
	Source     OccurrenceSource

	// Completion state. Once Completed is set the occurrence is finalized
	// and the synchronizer leaves it alone forever.
	Completed   bool
	ActualStart time.Time
	ActualEnd   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Finalized reports whether actual worked times have been confirmed.
func (o *ShiftOccurrence) Finalized() bool { return o.Completed }

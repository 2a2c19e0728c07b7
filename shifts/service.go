/*
service.go - The surface collaborators call into

PURPOSE:
  Orchestrates the pure components against the stores: contract
  create/update with seeding and reconciliation, occurrence completion,
  manual occurrences, payroll queries, and the audit surface. All
  validation runs before any persistence side effect.
*/
package shifts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/schedule"
)

type Service struct {
	contracts    ContractStore
	occurrences  OccurrenceTxStore
	synchronizer *Synchronizer
	reporter     *Reporter
}

func NewService(contracts ContractStore, occurrences OccurrenceTxStore) *Service {
	return &Service{
		contracts:    contracts,
		occurrences:  occurrences,
		synchronizer: NewSynchronizer(occurrences),
		reporter:     NewReporter(contracts, occurrences),
	}
}

// =============================================================================
// CONTRACT OPERATIONS
// =============================================================================

// ContractInput carries the caller-supplied contract fields.
type ContractInput struct {
	Facility string
	Role     string

	StartDate schedule.Date
	EndDate   schedule.Date
	Timezone  string
	Pattern   schedule.WeeklyPattern

	BaseRate             decimal.Decimal
	OvertimeRate         decimal.Decimal
	WeeklyHoursThreshold decimal.Decimal

	Status ContractStatus // empty means planned on create, unchanged on update
}

// SeedResult reports the materialization done at contract creation.
type SeedResult struct {
	Created     int `json:"created"`
	EnabledDays int `json:"enabled_days"`
}

// CreateContract validates the payload, persists the contract, and seeds
// its occurrences. Expansion runs first, so a bad range, an empty
// pattern, or an unknown zone fails before anything is written. A seed
// failure removes the contract again, so a failed create leaves nothing
// behind.
func (s *Service) CreateContract(ctx context.Context, input ContractInput) (*Contract, *SeedResult, error) {
	now := time.Now().UTC()
	contract := Contract{
		ID:                   uuid.NewString(),
		Facility:             input.Facility,
		Role:                 input.Role,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Timezone:             input.Timezone,
		Pattern:              input.Pattern,
		BaseRate:             input.BaseRate,
		OvertimeRate:         input.OvertimeRate,
		WeeklyHoursThreshold: input.WeeklyHoursThreshold,
		Status:               input.Status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if contract.Status == "" {
		contract.Status = StatusPlanned
	}
	if _, err := ParseStatus(string(contract.Status)); err != nil {
		return nil, nil, err
	}
	if err := contract.Validate(); err != nil {
		return nil, nil, err
	}

	desired, err := schedule.Expand(contract.StartDate, contract.EndDate, contract.Pattern, contract.Timezone)
	if err != nil {
		return nil, nil, err
	}

	if err := s.contracts.CreateContract(ctx, contract); err != nil {
		return nil, nil, err
	}
	result, err := s.synchronizer.Reconcile(ctx, contract.ID, desired)
	if err != nil {
		// The seed transaction rolled back, so no occurrences reference
		// the contract yet; remove it rather than leave an empty shell.
		// If the delete fails too, the audit report flags the contract
		// as all-missing.
		_ = s.contracts.DeleteContract(ctx, contract.ID)
		return nil, nil, err
	}

	return &contract, &SeedResult{
		Created:     result.Created,
		EnabledDays: contract.Pattern.EnabledCount(),
	}, nil
}

// UpdateContract applies the payload to an existing contract, enforces
// the forward-only status rule, and reconciles persisted occurrences
// against the recomputed desired set.
func (s *Service) UpdateContract(ctx context.Context, id string, input ContractInput) (*Contract, *SyncResult, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if contract == nil {
		return nil, nil, ErrContractNotFound
	}

	target := input.Status
	if target == "" {
		target = contract.Status
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return nil, nil, err
	}
	if !contract.Status.CanTransition(target) {
		return nil, nil, &TransitionError{From: contract.Status, To: target}
	}

	updated := *contract
	updated.Facility = input.Facility
	updated.Role = input.Role
	updated.StartDate = input.StartDate
	updated.EndDate = input.EndDate
	updated.Timezone = input.Timezone
	updated.Pattern = input.Pattern
	updated.BaseRate = input.BaseRate
	updated.OvertimeRate = input.OvertimeRate
	updated.WeeklyHoursThreshold = input.WeeklyHoursThreshold
	updated.Status = target
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		return nil, nil, err
	}
	desired, err := schedule.Expand(updated.StartDate, updated.EndDate, updated.Pattern, updated.Timezone)
	if err != nil {
		return nil, nil, err
	}

	if err := s.contracts.UpdateContract(ctx, updated); err != nil {
		return nil, nil, err
	}
	result, err := s.synchronizer.Reconcile(ctx, updated.ID, desired)
	if err != nil {
		return nil, nil, err
	}
	return &updated, &result, nil
}

// GetContract returns a contract or ErrContractNotFound.
func (s *Service) GetContract(ctx context.Context, id string) (*Contract, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}
	return contract, nil
}

// ListContracts passes the filter through to the store.
func (s *Service) ListContracts(ctx context.Context, filter ContractFilter) ([]Contract, error) {
	return s.contracts.ListContracts(ctx, filter)
}

// =============================================================================
// OCCURRENCE OPERATIONS
// =============================================================================

// CompleteOccurrence records actual worked times and finalizes the
// occurrence. Completing an already finalized occurrence is a conflict.
func (s *Service) CompleteOccurrence(ctx context.Context, id string, actualStart, actualEnd time.Time) (*ShiftOccurrence, error) {
	occ, err := s.occurrences.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, ErrOccurrenceNotFound
	}
	if occ.Finalized() {
		return nil, ErrAlreadyFinalized
	}
	if actualStart.IsZero() || actualEnd.IsZero() {
		return nil, &schedule.ValidationError{Code: "invalid_actuals", Message: "actual start and end are required"}
	}

	occ.Completed = true
	occ.ActualStart = actualStart.UTC()
	occ.ActualEnd = actualEnd.UTC()
	occ.UpdatedAt = time.Now().UTC()
	if err := s.occurrences.UpdateOccurrence(ctx, *occ); err != nil {
		return nil, err
	}
	return occ, nil
}

// ManualOccurrenceInput describes a shift entered outside any contract.
type ManualOccurrenceInput struct {
	LocalDate schedule.Date
	StartUTC  time.Time
	EndUTC    time.Time
}

// CreateManualOccurrence persists a manual occurrence. Manual records are
// never touched by the synchronizer and earn nothing from any contract.
func (s *Service) CreateManualOccurrence(ctx context.Context, input ManualOccurrenceInput) (*ShiftOccurrence, error) {
	if !input.StartUTC.Before(input.EndUTC) {
		return nil, &schedule.ValidationError{Code: "invalid_window", Message: "start must fall before end"}
	}
	now := time.Now().UTC()
	occ := ShiftOccurrence{
		ID:        uuid.NewString(),
		LocalDate: input.LocalDate,
		StartUTC:  input.StartUTC.UTC(),
		EndUTC:    input.EndUTC.UTC(),
		Source:    SourceManual,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.occurrences.CreateOccurrence(ctx, occ); err != nil {
		return nil, err
	}
	return &occ, nil
}

// OccurrencesForContract returns a contract's occurrences ordered by date.
func (s *Service) OccurrencesForContract(ctx context.Context, contractID string) ([]ShiftOccurrence, error) {
	if _, err := s.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.occurrences.OccurrencesByContract(ctx, contractID)
}

// OccurrencesInRange returns all occurrences in [from, to].
func (s *Service) OccurrencesInRange(ctx context.Context, from, to schedule.Date) ([]ShiftOccurrence, error) {
	if from.After(to) {
		return nil, schedule.ErrInvalidDateRange
	}
	return s.occurrences.OccurrencesInRange(ctx, from, to)
}

// =============================================================================
// PAYROLL AND AUDIT QUERIES
// =============================================================================

// PayrollForWeek computes the contract's payroll for the week containing
// the given date, over every occurrence with a local date in that week.
func (s *Service) PayrollForWeek(ctx context.Context, contractID string, anyDate schedule.Date) (*WeeklyPayroll, error) {
	contract, err := s.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	weekStart, weekEnd := WeekBoundaries(anyDate)
	shifts, err := s.occurrences.OccurrencesInRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	payroll, err := WeeklyEarnings(contract, weekStart, weekEnd, shifts)
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

// AuditContract recomputes the expected set for one contract and reports drift.
func (s *Service) AuditContract(ctx context.Context, contractID string) (*AuditResult, error) {
	return s.reporter.AuditContract(ctx, contractID)
}

// AuditAllContracts audits every contract.
func (s *Service) AuditAllContracts(ctx context.Context) ([]AuditResult, error) {
	return s.reporter.AuditAllContracts(ctx)
}

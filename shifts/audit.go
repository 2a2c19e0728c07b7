package shifts

import (
	"context"
	"sort"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// AUDIT REPORTER - Read-only drift detection
// =============================================================================

// AuditResult describes how a contract's persisted occurrences compare to
// the set its current schedule implies. Duplicates are surfaced as data,
// not raised as errors, since audit is diagnostic rather than transactional.
type AuditResult struct {
	ContractID string          `json:"contract_id"`
	Facility   string          `json:"facility"`
	Expected   int             `json:"expected"`
	Persisted  int             `json:"persisted"`
	Missing    []schedule.Date `json:"missing"`
	Duplicates []schedule.Date `json:"duplicates"`

	// FinalizedTouched counts finalized occurrences a reconcile run would
	// currently leave stranded outside the desired set.
	FinalizedTouched int `json:"finalized_touched"`
}

// Clean reports whether the persisted state matches the expected set.
func (r *AuditResult) Clean() bool {
	return len(r.Missing) == 0 && len(r.Duplicates) == 0 && r.FinalizedTouched == 0
}

// Reporter recomputes expected occurrence sets and compares them to the
// store. It never calls create, update, or delete, and tolerates reading
// state that a concurrent reconcile is about to change.
type Reporter struct {
	contracts   ContractStore
	occurrences OccurrenceStore
}

func NewReporter(contracts ContractStore, occurrences OccurrenceStore) *Reporter {
	return &Reporter{contracts: contracts, occurrences: occurrences}
}

// AuditContract audits a single contract.
func (r *Reporter) AuditContract(ctx context.Context, contractID string) (*AuditResult, error) {
	contract, err := r.contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}
	return r.audit(ctx, contract)
}

// AuditAllContracts audits every contract in the store.
func (r *Reporter) AuditAllContracts(ctx context.Context) ([]AuditResult, error) {
	contracts, err := r.contracts.ListContracts(ctx, ContractFilter{})
	if err != nil {
		return nil, err
	}
	results := make([]AuditResult, 0, len(contracts))
	for i := range contracts {
		result, err := r.audit(ctx, &contracts[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (r *Reporter) audit(ctx context.Context, contract *Contract) (*AuditResult, error) {
	desired, err := schedule.Expand(contract.StartDate, contract.EndDate, contract.Pattern, contract.Timezone)
	if err != nil {
		return nil, err
	}
	existing, err := r.occurrences.OccurrencesByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	result := &AuditResult{
		ContractID: contract.ID,
		Facility:   contract.Facility,
		Expected:   len(desired),
		Persisted:  len(existing),
		Missing:    []schedule.Date{},
		Duplicates: []schedule.Date{},
	}

	desiredDates := make(map[string]schedule.Date, len(desired))
	for _, slot := range desired {
		desiredDates[slot.LocalDate.String()] = slot.LocalDate
	}

	countByDate := make(map[string]int)
	for _, occ := range existing {
		countByDate[occ.LocalDate.String()]++
		if occ.Finalized() {
			if _, ok := desiredDates[occ.LocalDate.String()]; !ok {
				result.FinalizedTouched++
			}
		}
	}

	for key, date := range desiredDates {
		if countByDate[key] == 0 {
			result.Missing = append(result.Missing, date)
		}
	}
	for _, occ := range existing {
		if countByDate[occ.LocalDate.String()] > 1 {
			result.Duplicates = append(result.Duplicates, occ.LocalDate)
			countByDate[occ.LocalDate.String()] = 0 // report each date once
		}
	}

	sortDates(result.Missing)
	sortDates(result.Duplicates)
	return result, nil
}

func sortDates(dates []schedule.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

/*
sync.go - The shift synchronizer

PURPOSE:
  Brings a contract's persisted occurrences in line with the desired set
  its current schedule implies. BuildPlan is a pure diff over immutable
  inputs; Synchronizer loads, diffs, and applies the plan atomically with
  one writer per contract.

MATCHING:
  The key is (contract, local date). Desired dates with no match are
  created; non-finalized matches with drifted times are updated;
  non-finalized occurrences whose date left the desired set are deleted.
  Finalized occurrences are never created-over, updated, or deleted --
  when their date leaves the desired set they are only counted, for
  reporting, in FinalizedTouched.

IDEMPOTENCE:
  Running the same desired set twice with no intervening completions
  yields an empty plan the second time.
*/
package shifts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// PLAN - The computed diff
// =============================================================================

type Plan struct {
	ContractID       string
	ToCreate         []schedule.Slot
	ToUpdate         []ShiftOccurrence // times already replaced with desired
	ToDelete         []string          // occurrence IDs
	FinalizedTouched int               // finalized records stranded outside the desired set
}

func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// SyncResult summarizes an applied plan.
type SyncResult struct {
	Created          int `json:"created"`
	Updated          int `json:"updated"`
	Deleted          int `json:"deleted"`
	FinalizedTouched int `json:"finalized_touched"`
}

// =============================================================================
// BUILD PLAN - Pure diff, no side effects
// =============================================================================

// BuildPlan diffs the desired set against a contract's persisted
// occurrences. Occurrences that are not contract-sourced, or belong to a
// different contract, are outside the synchronizer's ownership and are
// skipped entirely.
func BuildPlan(contractID string, desired []schedule.Slot, existing []ShiftOccurrence) Plan {
	plan := Plan{ContractID: contractID}

	desiredByDate := make(map[string]schedule.Slot, len(desired))
	for _, slot := range desired {
		desiredByDate[slot.LocalDate.String()] = slot
	}

	byDate := make(map[string][]ShiftOccurrence)
	for _, occ := range existing {
		if occ.Source != SourceContract || occ.ContractID != contractID {
			continue
		}
		byDate[occ.LocalDate.String()] = append(byDate[occ.LocalDate.String()], occ)
	}

	// Walk desired in date order so plan output is deterministic.
	for _, slot := range sortedSlots(desired) {
		matches := byDate[slot.LocalDate.String()]
		if len(matches) == 0 {
			plan.ToCreate = append(plan.ToCreate, slot)
			continue
		}

		// A finalized occurrence satisfies its date: nothing is created
		// over it and its times are never rewritten.
		keeperFound := false
		for _, occ := range matches {
			if occ.Finalized() {
				keeperFound = true
				break
			}
		}
		for _, occ := range matches {
			if occ.Finalized() {
				continue
			}
			if !keeperFound {
				// First non-finalized match is the record to keep.
				keeperFound = true
				if !occ.StartUTC.Equal(slot.StartUTC) || !occ.EndUTC.Equal(slot.EndUTC) {
					occ.StartUTC = slot.StartUTC
					occ.EndUTC = slot.EndUTC
					plan.ToUpdate = append(plan.ToUpdate, occ)
				}
				continue
			}
			// Surplus non-finalized duplicate on a satisfied date.
			plan.ToDelete = append(plan.ToDelete, occ.ID)
		}
	}

	// Existing dates that fell out of the desired set.
	for date, matches := range byDate {
		if _, ok := desiredByDate[date]; ok {
			continue
		}
		for _, occ := range matches {
			if occ.Finalized() {
				plan.FinalizedTouched++
				continue
			}
			plan.ToDelete = append(plan.ToDelete, occ.ID)
		}
	}
	sort.Strings(plan.ToDelete)

	return plan
}

func sortedSlots(slots []schedule.Slot) []schedule.Slot {
	out := make([]schedule.Slot, len(slots))
	copy(out, slots)
	sort.Slice(out, func(i, j int) bool { return out[i].LocalDate.Before(out[j].LocalDate) })
	return out
}

// =============================================================================
// SYNCHRONIZER - Loads, diffs, applies atomically
// =============================================================================

// Synchronizer applies reconcile plans. Invocations for the same contract
// are serialized through a per-contract lock; the plan itself is applied
// inside a single store transaction so partial application is never
// observable.
type Synchronizer struct {
	store OccurrenceTxStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSynchronizer(store OccurrenceTxStore) *Synchronizer {
	return &Synchronizer{store: store, locks: make(map[string]*sync.Mutex)}
}

func (s *Synchronizer) contractLock(contractID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[contractID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[contractID] = lock
	}
	return lock
}

// Reconcile loads the contract's current occurrences, diffs them against
// the desired set, and applies the resulting plan.
func (s *Synchronizer) Reconcile(ctx context.Context, contractID string, desired []schedule.Slot) (SyncResult, error) {
	lock := s.contractLock(contractID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.OccurrencesByContract(ctx, contractID)
	if err != nil {
		return SyncResult{}, err
	}

	plan := BuildPlan(contractID, desired, existing)
	return s.apply(ctx, plan)
}

// apply writes the whole plan in one transaction. Every record the plan
// wants to update or delete is re-read inside the transaction: a
// completion that committed after the plan was built marks its record
// finalized, and a finalized record must survive the reconcile untouched.
// Skipped records surface in FinalizedTouched, so the returned counts are
// what actually happened, not what the plan intended.
func (s *Synchronizer) apply(ctx context.Context, plan Plan) (SyncResult, error) {
	result := SyncResult{FinalizedTouched: plan.FinalizedTouched}
	if plan.Empty() {
		return result, nil
	}
	now := time.Now().UTC()
	err := s.store.WithTx(ctx, func(store OccurrenceStore) error {
		for _, id := range plan.ToDelete {
			current, err := store.GetOccurrence(ctx, id)
			if err != nil {
				return err
			}
			if current == nil {
				continue
			}
			if current.Finalized() {
				result.FinalizedTouched++
				continue
			}
			if err := store.DeleteOccurrence(ctx, id); err != nil {
				return err
			}
			result.Deleted++
		}
		for _, occ := range plan.ToUpdate {
			current, err := store.GetOccurrence(ctx, occ.ID)
			if err != nil {
				return err
			}
			if current == nil {
				continue
			}
			if current.Finalized() {
				result.FinalizedTouched++
				continue
			}
			occ.UpdatedAt = now
			if err := store.UpdateOccurrence(ctx, occ); err != nil {
				return err
			}
			result.Updated++
		}
		for _, slot := range plan.ToCreate {
			occ := ShiftOccurrence{
				ID:         uuid.NewString(),
				ContractID: plan.ContractID,
				LocalDate:  slot.LocalDate,
				StartUTC:   slot.StartUTC,
				EndUTC:     slot.EndUTC,
				Source:     SourceContract,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := store.CreateOccurrence(ctx, occ); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	return result, nil
}

// Package store provides in-memory implementations of the shifts
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (tests/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	contracts   map[string]shifts.Contract
	occurrences map[string]shifts.ShiftOccurrence
	order       int
	insertedAt  map[string]int // insertion order for stable listings
}

func NewMemory() *Memory {
	return &Memory{
		contracts:   make(map[string]shifts.Contract),
		occurrences: make(map[string]shifts.ShiftOccurrence),
		insertedAt:  make(map[string]int),
	}
}

// -----------------------------------------------------------------------------
// ContractStore
// -----------------------------------------------------------------------------

func (m *Memory) CreateContract(_ context.Context, c shifts.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.ID] = c
	m.order++
	m.insertedAt[c.ID] = m.order
	return nil
}

func (m *Memory) UpdateContract(_ context.Context, c shifts.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[c.ID]; !ok {
		return shifts.ErrContractNotFound
	}
	m.contracts[c.ID] = c
	return nil
}

func (m *Memory) DeleteContract(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[id]; !ok {
		return shifts.ErrContractNotFound
	}
	for _, o := range m.occurrences {
		if o.ContractID == id {
			// Mirrors the foreign key the sqlite store enforces.
			return fmt.Errorf("failed to delete contract: occurrence %s still references it", o.ID)
		}
	}
	delete(m.contracts, id)
	delete(m.insertedAt, id)
	return nil
}

func (m *Memory) GetContract(_ context.Context, id string) (*shifts.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListContracts(_ context.Context, filter shifts.ContractFilter) ([]shifts.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []shifts.Contract
	for _, c := range m.contracts {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	// Newest first, matching the sqlite store's ordering.
	sort.Slice(out, func(i, j int) bool {
		return m.insertedAt[out[i].ID] > m.insertedAt[out[j].ID]
	})
	return page(out, filter.Page, filter.PerPage), nil
}

func page(cs []shifts.Contract, pageNum, perPage int) []shifts.Contract {
	if perPage <= 0 {
		return cs
	}
	if pageNum < 1 {
		pageNum = 1
	}
	lo := (pageNum - 1) * perPage
	if lo >= len(cs) {
		return []shifts.Contract{}
	}
	hi := lo + perPage
	if hi > len(cs) {
		hi = len(cs)
	}
	return cs[lo:hi]
}

// -----------------------------------------------------------------------------
// OccurrenceStore
// -----------------------------------------------------------------------------

func (m *Memory) CreateOccurrence(_ context.Context, o shifts.ShiftOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOccurrenceLocked(o)
}

func (m *Memory) createOccurrenceLocked(o shifts.ShiftOccurrence) error {
	if o.Source == shifts.SourceContract {
		for _, existing := range m.occurrences {
			if existing.Source == shifts.SourceContract &&
				existing.ContractID == o.ContractID &&
				existing.LocalDate.Equal(o.LocalDate) {
				return shifts.ErrDuplicateOccurrence
			}
		}
	}
	m.occurrences[o.ID] = o
	return nil
}

func (m *Memory) UpdateOccurrence(_ context.Context, o shifts.ShiftOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.occurrences[o.ID]; !ok {
		return shifts.ErrOccurrenceNotFound
	}
	m.occurrences[o.ID] = o
	return nil
}

func (m *Memory) DeleteOccurrence(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.occurrences[id]; !ok {
		return shifts.ErrOccurrenceNotFound
	}
	delete(m.occurrences, id)
	return nil
}

func (m *Memory) GetOccurrence(_ context.Context, id string) (*shifts.ShiftOccurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.occurrences[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *Memory) OccurrencesByContract(_ context.Context, contractID string) ([]shifts.ShiftOccurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []shifts.ShiftOccurrence
	for _, o := range m.occurrences {
		if o.ContractID == contractID && o.Source == shifts.SourceContract {
			out = append(out, o)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *Memory) OccurrencesInRange(_ context.Context, from, to schedule.Date) ([]shifts.ShiftOccurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []shifts.ShiftOccurrence
	for _, o := range m.occurrences {
		if schedule.InRange(o.LocalDate, from, to) {
			out = append(out, o)
		}
	}
	sortByDate(out)
	return out, nil
}

func sortByDate(os []shifts.ShiftOccurrence) {
	sort.Slice(os, func(i, j int) bool {
		if !os[i].LocalDate.Equal(os[j].LocalDate) {
			return os[i].LocalDate.Before(os[j].LocalDate)
		}
		return os[i].ID < os[j].ID
	})
}

// -----------------------------------------------------------------------------
// OccurrenceTxStore
// -----------------------------------------------------------------------------

// WithTx applies fn against a staged copy of the occurrence table and
// swaps it in only when fn succeeds, giving the same all-or-nothing
// behavior as a database transaction.
func (m *Memory) WithTx(ctx context.Context, fn func(shifts.OccurrenceStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &Memory{
		contracts:   m.contracts,
		occurrences: make(map[string]shifts.ShiftOccurrence, len(m.occurrences)),
		insertedAt:  m.insertedAt,
	}
	for id, o := range m.occurrences {
		staged.occurrences[id] = o
	}

	if err := fn(staged); err != nil {
		return err
	}
	m.occurrences = staged.occurrences
	return nil
}

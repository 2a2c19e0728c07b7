/*
store.go - Persistence interfaces for contracts and occurrences

PURPOSE:
  Defines the boundary between the domain and the database. The domain
  only ever sees these interfaces; implementations live in store/sqlite
  (production) and shifts/store (in-memory, for tests and dev).

ATOMICITY:
  OccurrenceTxStore.WithTx is the only way the synchronizer writes.
  A reconcile plan (creates + updates + deletes for one contract) is
  applied inside a single transaction: either the whole plan lands or
  none of it does. A partially applied plan could leave duplicate or
  missing occurrences, violating the (contract, date) uniqueness
  invariant.

SEE ALSO:
  - store/sqlite/sqlite.go: production implementation
  - shifts/store/memory.go: in-memory implementation
*/
package shifts

import (
	"context"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// CONTRACT STORE
// =============================================================================

// ContractFilter narrows and pages a contract listing.
type ContractFilter struct {
	Status  *ContractStatus
	Page    int // 1-based; 0 means first page
	PerPage int // 0 means no paging
}

type ContractStore interface {
	// CreateContract persists a new contract.
	CreateContract(ctx context.Context, c Contract) error

	// UpdateContract overwrites an existing contract by ID.
	UpdateContract(ctx context.Context, c Contract) error

	// DeleteContract removes a contract by ID. It fails while
	// occurrences still reference the contract.
	DeleteContract(ctx context.Context, id string) error

	// GetContract returns nil (no error) when the contract is absent.
	GetContract(ctx context.Context, id string) (*Contract, error)

	// ListContracts returns contracts matching the filter, newest first.
	ListContracts(ctx context.Context, filter ContractFilter) ([]Contract, error)
}

// =============================================================================
// OCCURRENCE STORE
// =============================================================================

type OccurrenceStore interface {
	// CreateOccurrence persists a new occurrence. Implementations must
	// reject a second contract-sourced occurrence for the same
	// (contract, local date) pair with ErrDuplicateOccurrence.
	CreateOccurrence(ctx context.Context, o ShiftOccurrence) error

	// UpdateOccurrence overwrites an existing occurrence by ID.
	UpdateOccurrence(ctx context.Context, o ShiftOccurrence) error

	// DeleteOccurrence removes an occurrence by ID.
	DeleteOccurrence(ctx context.Context, id string) error

	// GetOccurrence returns nil (no error) when the occurrence is absent.
	GetOccurrence(ctx context.Context, id string) (*ShiftOccurrence, error)

	// OccurrencesByContract returns a contract's occurrences ordered by date.
	OccurrencesByContract(ctx context.Context, contractID string) ([]ShiftOccurrence, error)

	// OccurrencesInRange returns all occurrences, contract-sourced and
	// manual, whose local date lies in [from, to], ordered by date.
	OccurrencesInRange(ctx context.Context, from, to schedule.Date) ([]ShiftOccurrence, error)
}

// OccurrenceTxStore adds transactional application on top of the store.
type OccurrenceTxStore interface {
	OccurrenceStore

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(OccurrenceStore) error) error
}

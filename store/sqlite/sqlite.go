/*
Package sqlite provides the SQLite-backed implementation of the shifts
storage interfaces.

PURPOSE:
  Implements shifts.ContractStore and shifts.OccurrenceTxStore over a
  single SQLite file. The same patterns apply to PostgreSQL with minor
  dialect differences.

KEY TABLES:
  contracts:         Contract definitions, weekly pattern as JSON
  shift_occurrences: Materialized shift records

INVARIANT ENFORCEMENT:
  idx_unique_contract_date makes (contract_id, local_date) unique for
  contract-sourced occurrences, so even a buggy reconcile cannot persist
  two shifts for the same contract on the same day. Violations surface
  as shifts.ErrDuplicateOccurrence.

WAL MODE:
  SQLite is opened with WAL so audit and payroll reads don't block the
  synchronizer's write transactions.

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := shifts.NewService(store, store)

SEE ALSO:
  - shifts/store.go: interface definitions
  - shifts/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/shifts"
)

// Store implements both storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		facility TEXT NOT NULL,
		role TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		timezone TEXT NOT NULL,
		pattern_json TEXT NOT NULL,
		base_rate TEXT NOT NULL,
		overtime_rate TEXT NOT NULL,
		weekly_hours_threshold TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_status
		ON contracts(status);

	CREATE TABLE IF NOT EXISTS shift_occurrences (
		id TEXT PRIMARY KEY,
		contract_id TEXT,
		local_date TEXT NOT NULL,
		start_utc TEXT NOT NULL,
		end_utc TEXT NOT NULL,
		source TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		actual_start TEXT,
		actual_end TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (contract_id) REFERENCES contracts(id)
	);

	-- CRITICAL: one occurrence per contract per day. A reconcile that
	-- tries to create over an existing date fails here instead of
	-- silently duplicating a shift.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_contract_date
		ON shift_occurrences(contract_id, local_date)
		WHERE contract_id IS NOT NULL AND source = 'contract';

	CREATE INDEX IF NOT EXISTS idx_occurrences_contract
		ON shift_occurrences(contract_id, local_date);
	CREATE INDEX IF NOT EXISTS idx_occurrences_date
		ON shift_occurrences(local_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer lets writes run against either the pool or an open transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// CONTRACT STORE (shifts.ContractStore interface)
// =============================================================================

func (s *Store) CreateContract(ctx context.Context, c shifts.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := json.Marshal(c.Pattern.Entries())
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	query := `
		INSERT INTO contracts
		(id, facility, role, start_date, end_date, timezone, pattern_json,
		 base_rate, overtime_rate, weekly_hours_threshold, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.Facility, c.Role,
		c.StartDate.String(), c.EndDate.String(), c.Timezone,
		string(patternJSON),
		c.BaseRate.String(), c.OvertimeRate.String(), c.WeeklyHoursThreshold.String(),
		string(c.Status),
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (s *Store) UpdateContract(ctx context.Context, c shifts.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := json.Marshal(c.Pattern.Entries())
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	query := `
		UPDATE contracts SET
			facility = ?, role = ?, start_date = ?, end_date = ?, timezone = ?,
			pattern_json = ?, base_rate = ?, overtime_rate = ?,
			weekly_hours_threshold = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		c.Facility, c.Role,
		c.StartDate.String(), c.EndDate.String(), c.Timezone,
		string(patternJSON),
		c.BaseRate.String(), c.OvertimeRate.String(), c.WeeklyHoursThreshold.String(),
		string(c.Status),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shifts.ErrContractNotFound
	}
	return nil
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The foreign key on shift_occurrences rejects this while any
	// occurrence still references the contract.
	res, err := s.db.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shifts.ErrContractNotFound
	}
	return nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*shifts.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contracts, err := s.queryContracts(ctx, contractSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, nil
	}
	return &contracts[0], nil
}

func (s *Store) ListContracts(ctx context.Context, filter shifts.ContractFilter) ([]shifts.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := contractSelect
	var args []any
	if filter.Status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*filter.Status))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.PerPage > 0 {
		pageNum := filter.Page
		if pageNum < 1 {
			pageNum = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.PerPage, (pageNum-1)*filter.PerPage)
	}

	contracts, err := s.queryContracts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []shifts.Contract{}
	}
	return contracts, nil
}

const contractSelect = `
	SELECT id, facility, role, start_date, end_date, timezone, pattern_json,
	       base_rate, overtime_rate, weekly_hours_threshold, status, created_at, updated_at
	FROM contracts
`

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]shifts.Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []shifts.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func scanContract(rows *sql.Rows) (shifts.Contract, error) {
	var (
		c                                 shifts.Contract
		startDate, endDate                string
		patternJSON                       string
		baseRate, overtimeRate, threshold string
		status, createdAt, updatedAt      string
	)
	err := rows.Scan(
		&c.ID, &c.Facility, &c.Role, &startDate, &endDate, &c.Timezone,
		&patternJSON, &baseRate, &overtimeRate, &threshold,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return c, fmt.Errorf("failed to scan contract: %w", err)
	}

	if c.StartDate, err = schedule.ParseDate(startDate); err != nil {
		return c, err
	}
	if c.EndDate, err = schedule.ParseDate(endDate); err != nil {
		return c, err
	}

	var entries []schedule.PatternEntry
	if err := json.Unmarshal([]byte(patternJSON), &entries); err != nil {
		return c, fmt.Errorf("failed to decode pattern: %w", err)
	}
	if c.Pattern, err = schedule.BuildPattern(entries); err != nil {
		return c, err
	}

	c.BaseRate = mustDecimal(baseRate)
	c.OvertimeRate = mustDecimal(overtimeRate)
	c.WeeklyHoursThreshold = mustDecimal(threshold)
	c.Status = shifts.ContractStatus(status)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

// =============================================================================
// OCCURRENCE STORE (shifts.OccurrenceStore interface)
// =============================================================================

func (s *Store) CreateOccurrence(ctx context.Context, o shifts.ShiftOccurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertOccurrence(ctx, s.db, o)
}

func (s *Store) insertOccurrence(ctx context.Context, db execer, o shifts.ShiftOccurrence) error {
	query := `
		INSERT INTO shift_occurrences
		(id, contract_id, local_date, start_utc, end_utc, source,
		 completed, actual_start, actual_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		o.ID,
		nullString(o.ContractID),
		o.LocalDate.String(),
		o.StartUTC.UTC().Format(time.RFC3339),
		o.EndUTC.UTC().Format(time.RFC3339),
		string(o.Source),
		boolToInt(o.Completed),
		nullTime(o.ActualStart),
		nullTime(o.ActualEnd),
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return shifts.ErrDuplicateOccurrence
		}
		return fmt.Errorf("failed to insert occurrence: %w", err)
	}
	return nil
}

func (s *Store) UpdateOccurrence(ctx context.Context, o shifts.ShiftOccurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateOccurrence(ctx, s.db, o)
}

func (s *Store) updateOccurrence(ctx context.Context, db execer, o shifts.ShiftOccurrence) error {
	query := `
		UPDATE shift_occurrences SET
			local_date = ?, start_utc = ?, end_utc = ?,
			completed = ?, actual_start = ?, actual_end = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query,
		o.LocalDate.String(),
		o.StartUTC.UTC().Format(time.RFC3339),
		o.EndUTC.UTC().Format(time.RFC3339),
		boolToInt(o.Completed),
		nullTime(o.ActualStart),
		nullTime(o.ActualEnd),
		o.UpdatedAt.UTC().Format(time.RFC3339),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update occurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shifts.ErrOccurrenceNotFound
	}
	return nil
}

func (s *Store) DeleteOccurrence(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteOccurrence(ctx, s.db, id)
}

func (s *Store) deleteOccurrence(ctx context.Context, db execer, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM shift_occurrences WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shifts.ErrOccurrenceNotFound
	}
	return nil
}

func (s *Store) GetOccurrence(ctx context.Context, id string) (*shifts.ShiftOccurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occurrences, err := s.queryOccurrences(ctx, occurrenceSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return nil, nil
	}
	return &occurrences[0], nil
}

func (s *Store) OccurrencesByContract(ctx context.Context, contractID string) ([]shifts.ShiftOccurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences(ctx,
		occurrenceSelect+" WHERE contract_id = ? AND source = 'contract' ORDER BY local_date ASC, id ASC",
		contractID)
}

func (s *Store) OccurrencesInRange(ctx context.Context, from, to schedule.Date) ([]shifts.ShiftOccurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences(ctx,
		occurrenceSelect+" WHERE local_date >= ? AND local_date <= ? ORDER BY local_date ASC, id ASC",
		from.String(), to.String())
}

const occurrenceSelect = `
	SELECT id, contract_id, local_date, start_utc, end_utc, source,
	       completed, actual_start, actual_end, created_at, updated_at
	FROM shift_occurrences
`

func (s *Store) queryOccurrences(ctx context.Context, query string, args ...any) ([]shifts.ShiftOccurrence, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []shifts.ShiftOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

func scanOccurrence(rows *sql.Rows) (shifts.ShiftOccurrence, error) {
	var (
		o                      shifts.ShiftOccurrence
		contractID             sql.NullString
		localDate              string
		startUTC, endUTC       string
		completed              int
		actualStart, actualEnd sql.NullString
		createdAt, updatedAt   string
	)
	err := rows.Scan(
		&o.ID, &contractID, &localDate, &startUTC, &endUTC, &o.Source,
		&completed, &actualStart, &actualEnd, &createdAt, &updatedAt,
	)
	if err != nil {
		return o, fmt.Errorf("failed to scan occurrence: %w", err)
	}

	o.ContractID = contractID.String
	if o.LocalDate, err = schedule.ParseDate(localDate); err != nil {
		return o, err
	}
	o.StartUTC, _ = time.Parse(time.RFC3339, startUTC)
	o.EndUTC, _ = time.Parse(time.RFC3339, endUTC)
	o.Completed = completed != 0
	if actualStart.Valid {
		o.ActualStart, _ = time.Parse(time.RFC3339, actualStart.String)
	}
	if actualEnd.Valid {
		o.ActualEnd, _ = time.Parse(time.RFC3339, actualEnd.String)
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return o, nil
}

// =============================================================================
// TRANSACTIONAL STORE (shifts.OccurrenceTxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store shifts.OccurrenceStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txOccurrenceStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txOccurrenceStore routes writes through an open transaction. Reads go
// through the transaction too so a plan sees its own writes.
type txOccurrenceStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txOccurrenceStore) CreateOccurrence(ctx context.Context, o shifts.ShiftOccurrence) error {
	return ts.parent.insertOccurrence(ctx, ts.tx, o)
}

func (ts *txOccurrenceStore) UpdateOccurrence(ctx context.Context, o shifts.ShiftOccurrence) error {
	return ts.parent.updateOccurrence(ctx, ts.tx, o)
}

func (ts *txOccurrenceStore) DeleteOccurrence(ctx context.Context, id string) error {
	return ts.parent.deleteOccurrence(ctx, ts.tx, id)
}

func (ts *txOccurrenceStore) GetOccurrence(ctx context.Context, id string) (*shifts.ShiftOccurrence, error) {
	rows, err := ts.tx.QueryContext(ctx, occurrenceSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	o, err := scanOccurrence(rows)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (ts *txOccurrenceStore) OccurrencesByContract(ctx context.Context, contractID string) ([]shifts.ShiftOccurrence, error) {
	return ts.query(ctx,
		occurrenceSelect+" WHERE contract_id = ? AND source = 'contract' ORDER BY local_date ASC, id ASC",
		contractID)
}

func (ts *txOccurrenceStore) OccurrencesInRange(ctx context.Context, from, to schedule.Date) ([]shifts.ShiftOccurrence, error) {
	return ts.query(ctx,
		occurrenceSelect+" WHERE local_date >= ? AND local_date <= ? ORDER BY local_date ASC, id ASC",
		from.String(), to.String())
}

func (ts *txOccurrenceStore) query(ctx context.Context, query string, args ...any) ([]shifts.ShiftOccurrence, error) {
	rows, err := ts.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []shifts.ShiftOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

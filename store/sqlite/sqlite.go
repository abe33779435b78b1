/*
Package sqlite provides a SQLite-backed implementation of amortization.Store.

PURPOSE:
  Persists computed schedules so they can be listed and fetched later. The
  engine knows nothing about this package; it only exchanges the data
  shapes defined in the amortization package.

INTERFACES IMPLEMENTED:
  amortization.Store:    Save, Get, List
  amortization.Resetter: Reset (demo scenarios)

KEY TABLES:
  schedules:        One row per calculation, loan input as columns
  schedule_entries: One row per period, keyed by (schedule_id, period)

DECIMALS:
  Every monetary value is stored as TEXT and read back through
  decimal.Decimal / decimal.NullDecimal, which implement sql.Scanner and
  driver.Valuer. No REAL columns: cents must survive the round trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on.

USAGE:
  st, err := sqlite.New("./data/amortization.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - amortization/store.go: Interface definitions
  - amortization/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/amortization-engine/amortization"
)

// Fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements amortization.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
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

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		loan_amount TEXT,
		deposit_amount TEXT NOT NULL,
		interest_rate TEXT,
		balloon_payment TEXT,
		term_months INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		period INTEGER NOT NULL,
		payment_amount TEXT NOT NULL,
		interest_amount TEXT NOT NULL,
		principal_amount TEXT NOT NULL,
		remaining_balance TEXT NOT NULL,
		PRIMARY KEY (schedule_id, period)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEDULES (amortization.Store interface)
// =============================================================================

// Save writes the schedule and all of its entries in one transaction.
func (s *Store) Save(ctx context.Context, sched amortization.Schedule) (amortization.StoredSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := amortization.StoredSchedule{
		ID:        amortization.ScheduleID(uuid.NewString()),
		CreatedAt: s.now().UTC(),
		Schedule:  sched,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return amortization.StoredSchedule{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	in := sched.Input
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedules (id, loan_amount, deposit_amount, interest_rate, balloon_payment, term_months, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, in.LoanAmount, in.DepositAmount, in.InterestRate, in.BalloonPayment,
		in.TermMonths, stored.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return amortization.StoredSchedule{}, fmt.Errorf("failed to insert schedule: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_entries (schedule_id, period, payment_amount, interest_amount, principal_amount, remaining_balance)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return amortization.StoredSchedule{}, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range sched.Entries {
		if _, err := stmt.ExecContext(ctx, stored.ID, e.Period,
			e.PaymentAmount, e.InterestAmount, e.PrincipalAmount, e.RemainingBalance); err != nil {
			return amortization.StoredSchedule{}, fmt.Errorf("failed to insert entry %d: %w", e.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return amortization.StoredSchedule{}, fmt.Errorf("failed to commit schedule: %w", err)
	}
	return stored, nil
}

// Get returns one schedule with its entries.
func (s *Store) Get(ctx context.Context, id amortization.ScheduleID) (amortization.StoredSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, loan_amount, deposit_amount, interest_rate, balloon_payment, term_months, created_at
		FROM schedules WHERE id = ?`, id)
	stored, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return amortization.StoredSchedule{}, fmt.Errorf("%w: %s", amortization.ErrScheduleNotFound, id)
	}
	if err != nil {
		return amortization.StoredSchedule{}, err
	}

	entries, err := s.queryEntries(ctx,
		"SELECT schedule_id, period, payment_amount, interest_amount, principal_amount, remaining_balance FROM schedule_entries WHERE schedule_id = ? ORDER BY period",
		id,
	)
	if err != nil {
		return amortization.StoredSchedule{}, err
	}
	stored.Schedule.Entries = entries[stored.ID]
	if stored.Schedule.Entries == nil {
		stored.Schedule.Entries = []amortization.Entry{}
	}
	return stored, nil
}

// List returns every schedule in creation order. Entries are loaded with a
// single query and grouped in memory.
func (s *Store) List(ctx context.Context) ([]amortization.StoredSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loan_amount, deposit_amount, interest_rate, balloon_payment, term_months, created_at
		FROM schedules ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []amortization.StoredSchedule
	for rows.Next() {
		stored, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := s.queryEntries(ctx,
		"SELECT schedule_id, period, payment_amount, interest_amount, principal_amount, remaining_balance FROM schedule_entries ORDER BY schedule_id, period",
	)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		schedules[i].Schedule.Entries = entries[schedules[i].ID]
		if schedules[i].Schedule.Entries == nil {
			schedules[i].Schedule.Entries = []amortization.Entry{}
		}
	}
	return schedules, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all schedules (for demo/testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedule_entries", "schedules"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (amortization.StoredSchedule, error) {
	var (
		stored    amortization.StoredSchedule
		in        amortization.LoanInput
		createdAt string
	)

	err := row.Scan(
		&stored.ID, &in.LoanAmount, &in.DepositAmount, &in.InterestRate,
		&in.BalloonPayment, &in.TermMonths, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return stored, err
	}
	if err != nil {
		return stored, fmt.Errorf("failed to scan schedule: %w", err)
	}

	stored.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return stored, fmt.Errorf("failed to parse created_at: %w", err)
	}
	stored.Schedule.Input = in
	return stored, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) (map[amortization.ScheduleID][]amortization.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[amortization.ScheduleID][]amortization.Entry)
	for rows.Next() {
		var (
			id amortization.ScheduleID
			e  amortization.Entry
		)
		if err := rows.Scan(&id, &e.Period, &e.PaymentAmount, &e.InterestAmount,
			&e.PrincipalAmount, &e.RemainingBalance); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries[id] = append(entries[id], e)
	}
	return entries, rows.Err()
}

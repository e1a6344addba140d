/*
Package sqlite provides a SQLite-backed shift snapshot.

PURPOSE:
  Implements planner.ShiftSource on a SQLite file so that a command or an
  embedding service can validate and price shifts that outlive the process.
  The engine itself never touches storage; this package only feeds it.

KEY TABLE:
  shifts: one row per shift instance. Clock times are stored as minutes
  since midnight, dates as YYYY-MM-DD text so that range queries compare
  lexically.

INDEXES:
  - idx_shifts_date: range reads (hot path)
  - idx_shifts_employee_date: per-employee reads

WAL MODE:
  Opened with WAL for concurrent readers. ":memory:" uses a single
  connection, since every pooled connection would otherwise get its own
  empty database.

USAGE:
  st, err := sqlite.New("./data/shifts.db")
  if err != nil {
      return err
  }
  defer st.Close()
  p := planner.FromConfig(st, cfg, logger)

SEE ALSO:
  - store/memory/memory.go: In-memory implementation for tests
  - planner/planner.go: ShiftSource consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		function_id TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL DEFAULT '',
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		actual_start_minute INTEGER,
		actual_end_minute INTEGER,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_date
		ON shifts(date, start_minute);
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shifts(employee_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// Add inserts shifts in one transaction. Every shift needs a unique ID.
func (s *Store) Add(ctx context.Context, shifts ...shift.Instance) error {
	for _, sh := range shifts {
		if err := sh.Validate(); err != nil {
			return err
		}
		if sh.ID == "" {
			return fmt.Errorf("%w: shift on %s has no id", generic.ErrInvalidShift, sh.Date)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO shifts
		(id, date, function_id, employee_id, start_minute, end_minute, break_minutes,
		 actual_start_minute, actual_end_minute, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, sh := range shifts {
		status := sh.Status
		if status == "" {
			status = shift.StatusDraft
		}
		_, err := tx.ExecContext(ctx, query,
			sh.ID,
			sh.Date.String(),
			sh.FunctionID,
			sh.EmployeeID,
			sh.Start.Minutes(),
			sh.End.Minutes(),
			sh.BreakMinutes,
			nullClock(sh.ActualStart),
			nullClock(sh.ActualEnd),
			status,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: duplicate shift id %q", generic.ErrInvalidShift, sh.ID)
			}
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// READS
// =============================================================================

const selectShifts = `
	SELECT id, date, function_id, employee_id, start_minute, end_minute, break_minutes,
	       actual_start_minute, actual_end_minute, status
	FROM shifts
`

// ShiftsInRange returns every shift dated within [from, to], ordered by
// date, start and insertion.
func (s *Store) ShiftsInRange(ctx context.Context, from, to generic.Date) ([]shift.Instance, error) {
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return nil, fmt.Errorf("shift range %s..%s: %w", from, to, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, selectShifts+`
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, start_minute ASC, rowid ASC
	`, from.String(), to.String())
}

func (s *Store) ShiftsForEmployee(ctx context.Context, id generic.EmployeeID, from, to generic.Date) ([]shift.Instance, error) {
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return nil, fmt.Errorf("shift range %s..%s: %w", from, to, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, selectShifts+`
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, start_minute ASC, rowid ASC
	`, id, from.String(), to.String())
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]shift.Instance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Instance
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func scanShift(rows *sql.Rows) (shift.Instance, error) {
	var (
		sh                     shift.Instance
		date                   string
		start, end             int
		actualStart, actualEnd sql.NullInt64
	)

	err := rows.Scan(
		&sh.ID, &date, &sh.FunctionID, &sh.EmployeeID,
		&start, &end, &sh.BreakMinutes,
		&actualStart, &actualEnd, &sh.Status,
	)
	if err != nil {
		return sh, fmt.Errorf("failed to scan shift: %w", err)
	}

	if sh.Date, err = generic.ParseDate(date); err != nil {
		return sh, fmt.Errorf("shift %q: %w", sh.ID, err)
	}
	sh.Start = generic.ClockTime(start)
	sh.End = generic.ClockTime(end)
	sh.ActualStart = clockFrom(actualStart)
	sh.ActualEnd = clockFrom(actualEnd)
	return sh, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullClock(c *generic.ClockTime) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(c.Minutes()), Valid: true}
}

func clockFrom(n sql.NullInt64) *generic.ClockTime {
	if !n.Valid {
		return nil
	}
	c := generic.ClockTime(n.Int64)
	return &c
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Package memory provides an in-memory shift snapshot.
//
// The engine never reads storage itself. Callers pre-fetch shifts from
// whatever persists them and hand slices to the engine; Store is that
// collaborator for tests, demos and embedding callers without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// =============================================================================
// MEMORY STORE - In-memory shift snapshot (for testing/dev)
// =============================================================================

// Store keeps shifts sorted by date, then start time, then insertion order.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	shifts []shift.Instance
	ids    map[generic.ShiftID]bool
}

func New(shifts ...shift.Instance) (*Store, error) {
	s := &Store{ids: make(map[generic.ShiftID]bool)}
	if err := s.Add(context.Background(), shifts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts shifts. Every shift is checked before any is stored, so a
// failed Add leaves the store unchanged. Shift IDs must be unique.
func (s *Store) Add(_ context.Context, shifts ...shift.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[generic.ShiftID]bool, len(shifts))
	for _, sh := range shifts {
		if err := sh.Validate(); err != nil {
			return err
		}
		if sh.ID == "" {
			continue
		}
		if s.ids[sh.ID] || seen[sh.ID] {
			return fmt.Errorf("%w: duplicate shift id %q", generic.ErrInvalidShift, sh.ID)
		}
		seen[sh.ID] = true
	}

	for _, sh := range shifts {
		s.insertLocked(sh)
	}
	return nil
}

func (s *Store) insertLocked(sh shift.Instance) {
	// First position sorting strictly after sh keeps equal keys in insertion order.
	i := sort.Search(len(s.shifts), func(i int) bool {
		cur := s.shifts[i]
		if !cur.Date.Equal(sh.Date) {
			return cur.Date.After(sh.Date)
		}
		return cur.Start > sh.Start
	})

	s.shifts = append(s.shifts, shift.Instance{})
	copy(s.shifts[i+1:], s.shifts[i:])
	s.shifts[i] = sh
	if sh.ID != "" {
		s.ids[sh.ID] = true
	}
}

// ShiftsInRange returns every shift dated within [from, to], cancelled ones
// included.
func (s *Store) ShiftsInRange(ctx context.Context, from, to generic.Date) ([]shift.Instance, error) {
	return s.collect(ctx, from, to, func(shift.Instance) bool { return true })
}

// ShiftsForEmployee returns the employee's shifts dated within [from, to].
func (s *Store) ShiftsForEmployee(ctx context.Context, id generic.EmployeeID, from, to generic.Date) ([]shift.Instance, error) {
	return s.collect(ctx, from, to, func(sh shift.Instance) bool { return sh.EmployeeID == id })
}

func (s *Store) collect(ctx context.Context, from, to generic.Date, keep func(shift.Instance) bool) ([]shift.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return nil, fmt.Errorf("shift range %s..%s: %w", from, to, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.shifts), func(i int) bool {
		return s.shifts[i].Date.AfterOrEqual(from)
	})
	var result []shift.Instance
	for _, sh := range s.shifts[lo:] {
		if sh.Date.After(to) {
			break
		}
		if keep(sh) {
			result = append(result, sh)
		}
	}
	return result, nil
}

// Len returns the number of stored shifts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shifts)
}

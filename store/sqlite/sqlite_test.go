package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/planner"
	"github.com/warp/workforce-engine/shift"
	"github.com/warp/workforce-engine/store/sqlite"
)

var _ planner.ShiftSource = (*sqlite.Store)(nil)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "shifts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mk(id, date, start, end string, emp generic.EmployeeID) shift.Instance {
	return shift.Instance{
		ID:         generic.ShiftID(id),
		Date:       generic.MustParseDate(date),
		FunctionID: "cashier",
		EmployeeID: emp,
		Start:      generic.MustClock(start),
		End:        generic.MustClock(end),
		Status:     shift.StatusPublished,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	// GIVEN a completed overnight shift with actual times
	st := newStore(t)
	in := mk("n1", "2025-03-10", "22:00", "06:00", "alice")
	in.BreakMinutes = 30
	in.Status = shift.StatusCompleted
	actualStart, actualEnd := generic.MustClock("22:15"), generic.MustClock("06:05")
	in.ActualStart, in.ActualEnd = &actualStart, &actualEnd
	require.NoError(t, st.Add(context.Background(), in))

	// WHEN reading it back
	got, err := st.ShiftsInRange(context.Background(), in.Date, in.Date)

	// THEN every field survives
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in, got[0])
}

func TestStore_RangeOrdering(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.Add(context.Background(),
		mk("c", "2025-03-12", "08:00", "16:00", "alice"),
		mk("b", "2025-03-10", "14:00", "22:00", "bob"),
		mk("a", "2025-03-10", "06:00", "14:00", "alice"),
		mk("out", "2025-03-17", "06:00", "14:00", "alice"),
	))

	got, err := st.ShiftsInRange(context.Background(), generic.MustParseDate("2025-03-10"), generic.MustParseDate("2025-03-16"))

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, generic.ShiftID("a"), got[0].ID)
	assert.Equal(t, generic.ShiftID("b"), got[1].ID)
	assert.Equal(t, generic.ShiftID("c"), got[2].ID)
}

func TestStore_ShiftsForEmployee(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.Add(context.Background(),
		mk("a1", "2025-03-10", "08:00", "16:00", "alice"),
		mk("b1", "2025-03-10", "08:00", "16:00", "bob"),
		mk("a2", "2025-03-11", "08:00", "16:00", "alice"),
	))

	got, err := st.ShiftsForEmployee(context.Background(), "alice", generic.MustParseDate("2025-03-10"), generic.MustParseDate("2025-03-16"))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, generic.ShiftID("a2"), got[1].ID)
}

func TestStore_AddIsAtomic(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.Add(context.Background(), mk("a", "2025-03-10", "08:00", "16:00", "alice")))

	// GIVEN a batch whose second shift reuses an ID
	err := st.Add(context.Background(),
		mk("new", "2025-03-11", "08:00", "16:00", "bob"),
		mk("a", "2025-03-11", "08:00", "16:00", "bob"),
	)

	// THEN nothing from the batch is stored
	assert.ErrorIs(t, err, generic.ErrInvalidShift)
	got, err := st.ShiftsInRange(context.Background(), generic.MustParseDate("2025-03-01"), generic.MustParseDate("2025-03-31"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_RejectsShiftsWithoutID(t *testing.T) {
	st := newStore(t)

	err := st.Add(context.Background(), mk("", "2025-03-10", "08:00", "16:00", "alice"))

	assert.ErrorIs(t, err, generic.ErrInvalidShift)
}

func TestStore_InMemory(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Add(context.Background(), mk("a", "2025-03-10", "08:00", "16:00", "alice")))
	got, err := st.ShiftsInRange(context.Background(), generic.MustParseDate("2025-03-10"), generic.MustParseDate("2025-03-10"))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

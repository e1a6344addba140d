package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/calendar"
	"github.com/warp/workforce-engine/factory"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/ladder"
	"github.com/warp/workforce-engine/planner"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/rollout"
	"github.com/warp/workforce-engine/shift"
	"github.com/warp/workforce-engine/store/memory"
	"github.com/warp/workforce-engine/worktime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// FIXTURES
// =============================================================================

var monday = generic.NewDate(2025, time.March, 10)

func mk(id string, date generic.Date, start, end string, emp generic.EmployeeID) shift.Instance {
	return shift.Instance{
		ID:         generic.ShiftID(id),
		Date:       date,
		FunctionID: "cashier",
		EmployeeID: emp,
		Start:      generic.MustClock(start),
		End:        generic.MustClock(end),
		Status:     shift.StatusPublished,
	}
}

func weekShifts() []shift.Instance {
	cancelled := mk("x1", monday, "06:00", "22:00", "bob")
	cancelled.Status = shift.StatusCancelled
	return []shift.Instance{
		mk("z1", monday.AddDays(2), "08:00", "16:00", "zoe"),
		mk("a1", monday, "08:00", "16:00", "alice"),
		mk("a2", monday, "17:00", "23:00", "alice"),
		mk("b1", monday.AddDays(1), "08:00", "16:00", "bob"),
		mk("open", monday.AddDays(3), "08:00", "16:00", ""),
		cancelled,
		mk("next", monday.AddDays(7), "09:00", "17:00", "alice"),
	}
}

func rules() worktime.RuleSet {
	return worktime.RuleSet{
		ID:                     "cao",
		Active:                 true,
		MaxHoursPerDay:         decimal.NewFromInt(9),
		MaxHoursPerDayExtended: decimal.NewFromInt(10),
		MinRestBetweenShifts:   decimal.NewFromInt(11),
		MaxHoursPerWeek:        decimal.NewFromInt(40),
		MaxHoursPerWeekAverage: decimal.NewFromInt(48),
		WarnAtPercentOfMax:     decimal.NewFromInt(90),
	}
}

func supplements() []pricing.SupplementRule {
	ws, we := generic.MustClock("21:00"), generic.MustClock("06:00")
	return []pricing.SupplementRule{
		{ID: "night", Category: pricing.CategoryNight, Kind: pricing.KindPercentage, Amount: decimal.NewFromInt(25), WindowStart: &ws, WindowEnd: &we},
		{ID: "holiday", Category: pricing.CategoryHoliday, Kind: pricing.KindFlat, Amount: decimal.NewFromInt(5)},
	}
}

func retailLadder() ladder.Ladder {
	return ladder.Ladder{ID: "retail", Levels: []ladder.Level{
		{Number: 1, HourlyRate: decimal.NewFromInt(14), MinHours: decimal.Zero},
		{Number: 2, HourlyRate: decimal.NewFromInt(16), MinHours: decimal.NewFromInt(1000)},
	}}
}

func newPlanner(t *testing.T, shifts []shift.Instance, logger *zap.Logger) *planner.Planner {
	t.Helper()
	st, err := memory.New(shifts...)
	require.NoError(t, err)

	return planner.New(st, planner.Options{
		Rules:       rules(),
		Supplements: supplements(),
		Ladders:     []ladder.Ladder{retailLadder()},
		DefaultRate: decimal.NewFromInt(10),
		Calendar:    calendar.MustNew(calendar.Holiday{Name: "Founders Day", Date: monday.AddDays(1)}),
		Logger:      logger,
	})
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

type failingSource struct{ err error }

func (f failingSource) ShiftsInRange(context.Context, generic.Date, generic.Date) ([]shift.Instance, error) {
	return nil, f.err
}

// =============================================================================
// VALIDATE WEEK
// =============================================================================

func TestPlanner_ValidateWeek(t *testing.T) {
	// GIVEN a week where alice works 14h on Monday with a 1h gap
	core, logs := observer.New(zapcore.DebugLevel)
	p := newPlanner(t, weekShifts(), zap.New(core))

	// WHEN validating from a mid-week day
	report, err := p.ValidateWeek(context.Background(), monday.AddDays(3))
	require.NoError(t, err)

	// THEN the report covers Monday-Sunday, one entry per employee by ID
	assert.Equal(t, generic.WeekOf(monday), report.Week)
	require.Len(t, report.Employees, 3)
	assert.Equal(t, generic.EmployeeID("alice"), report.Employees[0].EmployeeID)
	assert.Equal(t, generic.EmployeeID("bob"), report.Employees[1].EmployeeID)
	assert.Equal(t, generic.EmployeeID("zoe"), report.Employees[2].EmployeeID)

	// AND alice breaks the extended daily cap and the rest minimum
	alice := report.Employees[0]
	assertDecimal(t, "14", alice.Hours)
	assert.Equal(t, 2, alice.Summary.Critical)
	assert.Len(t, worktime.ByType(alice.Violations, worktime.TypeDailyHoursExtended), 1)
	assert.Len(t, worktime.ByType(alice.Violations, worktime.TypeMinRest), 1)

	// AND bob's cancelled double shift is ignored
	assert.Empty(t, report.Employees[1].Violations)
	assertDecimal(t, "8", report.Employees[1].Hours)

	assert.Equal(t, worktime.Summary{Critical: 2}, report.Summary)
	assert.Len(t, report.Violations(), 2)

	// AND the batch was logged once, each employee at debug
	assert.Equal(t, 1, logs.FilterMessage("validated week").Len())
	assert.Equal(t, 3, logs.FilterMessage("validated employee").Len())
}

func TestPlanner_ValidateWeekIsDeterministic(t *testing.T) {
	st, err := memory.New(weekShifts()...)
	require.NoError(t, err)

	serial := planner.New(st, planner.Options{Rules: rules(), Concurrency: 1})
	parallel := planner.New(st, planner.Options{Rules: rules(), Concurrency: 16})

	a, err := serial.ValidateWeek(context.Background(), monday)
	require.NoError(t, err)
	b, err := parallel.ValidateWeek(context.Background(), monday)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPlanner_ValidateWeekWithCustomChecks(t *testing.T) {
	st, err := memory.New(weekShifts()...)
	require.NoError(t, err)
	p := planner.New(st, planner.Options{
		Rules:     rules(),
		Validator: worktime.NewValidator(worktime.RestCheck{}),
	})

	report, err := p.ValidateWeek(context.Background(), monday)

	require.NoError(t, err)
	assert.Equal(t, worktime.Summary{Critical: 1}, report.Summary)
}

func TestPlanner_SourceErrors(t *testing.T) {
	boom := errors.New("database unavailable")
	p := planner.New(failingSource{err: boom}, planner.Options{Rules: rules()})

	_, err := p.ValidateWeek(context.Background(), monday)
	assert.ErrorIs(t, err, boom)

	_, err = p.WeeklyCost(context.Background(), monday, nil)
	assert.ErrorIs(t, err, boom)

	_, err = p.PreviewRollout(context.Background(), planner.RolloutRequest{
		Template:  &rollout.Template{ID: "A"},
		StartWeek: monday,
		Weeks:     1,
	})
	assert.ErrorIs(t, err, boom)
}

func TestPlanner_CancelledContext(t *testing.T) {
	p := newPlanner(t, weekShifts(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ValidateWeek(ctx, monday)

	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// WEEKLY COST
// =============================================================================

func TestPlanner_WeeklyCost(t *testing.T) {
	// GIVEN alice at 20/h, everyone else on the default 10/h, Tuesday a holiday
	p := newPlanner(t, weekShifts(), nil)
	rates := map[generic.EmployeeID]decimal.Decimal{"alice": decimal.NewFromInt(20)}

	// WHEN pricing the week
	cost, err := p.WeeklyCost(context.Background(), monday, rates)
	require.NoError(t, err)

	// THEN base = alice 14h*20 + bob 8h*10 + zoe 8h*10 + open 8h*10
	assertDecimal(t, "38", cost.TotalHours)
	assertDecimal(t, "520", cost.BaseCost)
	// AND alice earns 2 night hours at 25%, bob 8 holiday hours at 5 flat
	assertDecimal(t, "10", cost.Supplements.Night)
	assertDecimal(t, "40", cost.Supplements.Holiday)
	assertDecimal(t, "570", cost.TotalCost)
	assert.Empty(t, cost.UnpricedShifts)
	assert.Len(t, cost.Lines, 5)
}

// =============================================================================
// ROLLOUT PREVIEW
// =============================================================================

func TestPlanner_PreviewRollout(t *testing.T) {
	// GIVEN a template overlapping alice's Monday shift, and a Tuesday holiday
	core, logs := observer.New(zapcore.InfoLevel)
	p := newPlanner(t, weekShifts(), zap.New(core))
	tpl := rollout.Template{ID: "A", Entries: []rollout.Entry{
		{DayOfWeek: 0, FunctionID: "cashier", Start: generic.MustClock("08:00"), End: generic.MustClock("16:00")},
		{DayOfWeek: 1, FunctionID: "stock", Start: generic.MustClock("08:00"), End: generic.MustClock("16:00"), BreakMinutes: 30, EmployeeID: "dave"},
	}}

	// WHEN previewing two weeks from a Wednesday
	preview, err := p.PreviewRollout(context.Background(), planner.RolloutRequest{
		Template:  &tpl,
		StartWeek: monday.AddDays(2),
		Weeks:     2,
		Policy:    rollout.Policy{SkipHolidays: true, KeepEmployeeAssignments: true},
		Employees: []ladder.Employee{{ID: "dave", LadderID: "retail", AccumulatedHours: decimal.NewFromInt(1200)}},
	})
	require.NoError(t, err)

	// THEN the horizon starts on the Monday
	assert.Equal(t, generic.Period{Start: monday, End: monday.AddDays(13)}, preview.Horizon)

	// AND week 0 conflicts on Monday and skips the Tuesday holiday
	require.Len(t, preview.Weeks, 2)
	w0 := preview.Weeks[0]
	assert.Equal(t, 1, w0.ConflictCount)
	assert.Equal(t, generic.ShiftID("a1"), w0.Candidates[0].ExistingID)
	require.Len(t, w0.SkippedHolidays, 1)
	assert.Equal(t, "Founders Day", w0.SkippedHolidays[0].HolidayName)

	// AND week 1 creates both, dave at his ladder rate of 16
	assert.Equal(t, rollout.Summary{
		Weeks:           2,
		New:             2,
		Conflicts:       1,
		SkippedHolidays: 1,
		TotalHours:      preview.Summary.TotalHours,
		EstimatedCost:   preview.Summary.EstimatedCost,
	}, preview.Summary)
	assertDecimal(t, "15.5", preview.Summary.TotalHours)
	// 8h * 10 default + 7.5h * 16
	assertDecimal(t, "200", preview.Summary.EstimatedCost.TotalCost)

	assert.Equal(t, 1, logs.FilterMessage("previewed rollout").Len())
}

func TestPlanner_PreviewRolloutRejectsMalformedRequest(t *testing.T) {
	p := newPlanner(t, nil, nil)

	_, err := p.PreviewRollout(context.Background(), planner.RolloutRequest{StartWeek: monday, Weeks: 1})

	assert.ErrorIs(t, err, generic.ErrInvalidTemplate)
}

// =============================================================================
// WAGE STATUS
// =============================================================================

func TestPlanner_WageStatus(t *testing.T) {
	// GIVEN 990 stored hours and a completed 12h shift
	worked := mk("w1", monday, "07:00", "19:00", "alice")
	worked.Status = shift.StatusCompleted
	planned := mk("w2", monday.AddDays(1), "07:00", "19:00", "alice")
	other := mk("w3", monday, "07:00", "19:00", "bob")
	other.Status = shift.StatusCompleted
	p := newPlanner(t, []shift.Instance{worked, planned, other}, nil)

	employee := ladder.Employee{ID: "alice", LadderID: "retail", AccumulatedHours: decimal.NewFromInt(990)}

	// WHEN resolving as of the end of the week
	res, err := p.WageStatus(context.Background(), employee, monday, monday.AddDays(6))

	// THEN only the completed shift counts, lifting alice to level 2
	require.NoError(t, err)
	require.NotNil(t, res)
	assertDecimal(t, "1002", res.AccumulatedHours)
	assert.Equal(t, 2, res.Level.Number)
	assertDecimal(t, "16", res.HourlyRate)

	_, err = p.WageStatus(context.Background(), ladder.Employee{ID: "alice", LadderID: "warehouse"}, monday, monday)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// FROM CONFIG
// =============================================================================

func TestFromConfig(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(`
default_hourly_rate: 10
rule_sets:
  - id: cao
    active: true
    max_hours_per_day: 9
    max_hours_per_day_extended: 10
holidays:
  - {name: Founders Day, date: "2025-03-11"}
`))
	require.NoError(t, err)
	st, err := memory.New(weekShifts()...)
	require.NoError(t, err)

	p := planner.FromConfig(st, cfg, nil)

	report, err := p.ValidateWeek(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, worktime.Summary{Critical: 1}, report.Summary)

	cost, err := p.WeeklyCost(context.Background(), monday, nil)
	require.NoError(t, err)
	assertDecimal(t, "380", cost.TotalCost)
}

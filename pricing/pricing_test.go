package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/shift"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	saturday = generic.NewDate(2025, time.March, 8)
	monday   = generic.NewDate(2025, time.March, 10)
	thursday = generic.NewDate(2025, time.March, 13)
	friday   = generic.NewDate(2025, time.March, 14)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func clockPtr(s string) *generic.ClockTime {
	c := generic.MustClock(s)
	return &c
}

func newShift(id string, date generic.Date, emp, start, end string, breakMinutes int) shift.Instance {
	return shift.Instance{
		ID:           generic.ShiftID(id),
		Date:         date,
		EmployeeID:   generic.EmployeeID(emp),
		FunctionID:   "cashier",
		Start:        generic.MustClock(start),
		End:          generic.MustClock(end),
		BreakMinutes: breakMinutes,
		Status:       shift.StatusPublished,
	}
}

func nightRule(pct string) pricing.SupplementRule {
	return pricing.SupplementRule{
		ID:          "night",
		Category:    pricing.CategoryNight,
		Kind:        pricing.KindPercentage,
		Amount:      d(pct),
		WindowStart: clockPtr("21:00"),
		WindowEnd:   clockPtr("06:00"),
	}
}

func weekendRule(pct string) pricing.SupplementRule {
	return pricing.SupplementRule{ID: "weekend", Category: pricing.CategoryWeekend, Kind: pricing.KindPercentage, Amount: d(pct)}
}

func holidayRule(pct string) pricing.SupplementRule {
	return pricing.SupplementRule{ID: "holiday", Category: pricing.CategoryHoliday, Kind: pricing.KindPercentage, Amount: d(pct)}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, d(expected).String(), actual.String(), msgAndArgs...)
}

// =============================================================================
// STACKING
// =============================================================================

func TestCalculate_NightAndWeekendStack(t *testing.T) {
	// GIVEN: A Saturday night shift with both a night and a weekend rule
	in := pricing.Input{
		Shifts: []shift.Instance{newShift("s1", saturday, "alice", "22:00", "06:00", 0)},
		Rules:  []pricing.SupplementRule{nightRule("25"), weekendRule("50")},
		Rates:  map[generic.EmployeeID]decimal.Decimal{"alice": d("20")},
	}

	// WHEN: Pricing
	got := pricing.Calculate(in)

	// THEN: Both categories are paid for the same hours
	assertDecimal(t, "8", got.TotalHours)
	assertDecimal(t, "160", got.BaseCost)
	assertDecimal(t, "40", got.Supplements.Night)
	assertDecimal(t, "80", got.Supplements.Weekend)
	assertDecimal(t, "8", got.SupplementHours.Night)
	assertDecimal(t, "8", got.SupplementHours.Weekend)
	assertDecimal(t, "120", got.SupplementCost)
	assertDecimal(t, "280", got.TotalCost)

	assert.True(t, got.SupplementCost.GreaterThan(got.Supplements.Night))
	assert.True(t, got.SupplementCost.GreaterThan(got.Supplements.Weekend))

	require.Len(t, got.Lines, 1)
	assert.Len(t, got.Lines[0].Supplements, 2)
	assert.True(t, got.Lines[0].Classification.IsWeekend)
	assert.True(t, got.Lines[0].Classification.IsNightShift)
}

func TestCalculate_TotalIsBasePlusCategoriesExactly(t *testing.T) {
	rules := []pricing.SupplementRule{
		nightRule("25"),
		weekendRule("50"),
		holidayRule("100"),
		{ID: "evening", Category: pricing.CategoryEvening, Kind: pricing.KindFlat, Amount: d("1.37")},
	}
	holidays := generic.HolidaySet{saturday.AddDays(1): "Test holiday"}

	var shifts []shift.Instance
	for day := 0; day < 7; day++ {
		for h := 0; h < 24; h += 5 {
			start := generic.ClockTime(h * 60)
			end := generic.ClockTime(((h + 7) % 24) * 60)
			shifts = append(shifts, shift.Instance{
				ID:           generic.ShiftID(saturday.AddDays(day).String() + start.String()),
				Date:         saturday.AddDays(day),
				EmployeeID:   "alice",
				Start:        start,
				End:          end,
				BreakMinutes: 17,
			})
		}
	}

	got := pricing.Calculate(pricing.Input{
		Shifts:   shifts,
		Rules:    rules,
		Rates:    map[generic.EmployeeID]decimal.Decimal{"alice": d("13.13")},
		Holidays: holidays,
	})

	assert.True(t, got.TotalCost.Equal(got.BaseCost.Add(got.Supplements.Sum())))
	assert.True(t, got.SupplementCost.Equal(got.Supplements.Sum()))
	for _, line := range got.Lines {
		assert.True(t, line.TotalCost.Equal(line.BaseCost.Add(line.CategoryCost.Sum())), "line %s", line.ShiftID)
	}
}

// =============================================================================
// RULE KINDS AND PREDICATES
// =============================================================================

func TestCalculate_FlatEveningSupplement(t *testing.T) {
	rule := pricing.SupplementRule{
		ID:          "evening",
		Category:    pricing.CategoryEvening,
		Kind:        pricing.KindFlat,
		Amount:      d("2.50"),
		WindowStart: clockPtr("18:00"),
		WindowEnd:   clockPtr("22:00"),
	}

	got := pricing.Calculate(pricing.Input{
		Shifts:      []shift.Instance{newShift("s1", monday, "bob", "16:00", "23:00", 0)},
		Rules:       []pricing.SupplementRule{rule},
		DefaultRate: d("15"),
	})

	assertDecimal(t, "105", got.BaseCost)
	assertDecimal(t, "4", got.SupplementHours.Evening)
	assertDecimal(t, "10", got.Supplements.Evening)
	assertDecimal(t, "115", got.TotalCost)
	assert.Equal(t, pricing.RateDefault, got.Lines[0].RateSource)
}

func TestCalculate_OverlapCappedAtNetHours(t *testing.T) {
	// GIVEN: A night shift fully inside the window but with a 1h break
	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{newShift("s1", monday, "alice", "22:00", "06:00", 60)},
		Rules:  []pricing.SupplementRule{nightRule("25")},
		Rates:  map[generic.EmployeeID]decimal.Decimal{"alice": d("20")},
	})

	// THEN: Only the 7 paid hours earn the supplement
	assertDecimal(t, "7", got.SupplementHours.Night)
	assertDecimal(t, "35", got.Supplements.Night)
}

func TestCalculate_WeekdayPredicate(t *testing.T) {
	rule := nightRule("25")
	rule.Weekdays = []time.Weekday{time.Friday}

	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{
			newShift("thu", thursday, "alice", "22:00", "02:00", 0),
			newShift("fri", friday, "alice", "22:00", "02:00", 0),
		},
		Rules: []pricing.SupplementRule{rule},
		Rates: map[generic.EmployeeID]decimal.Decimal{"alice": d("20")},
	})

	require.Len(t, got.Lines, 2)
	assert.Empty(t, got.Lines[0].Supplements)
	assertDecimal(t, "4", got.Lines[1].CategoryHours.Night)
	assertDecimal(t, "20", got.Supplements.Night)
}

func TestCalculate_DefaultNightWindow(t *testing.T) {
	rule := pricing.SupplementRule{ID: "night", Category: pricing.CategoryNight, Kind: pricing.KindPercentage, Amount: d("10")}

	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{newShift("s1", monday, "alice", "20:00", "07:00", 0)},
		Rules:  []pricing.SupplementRule{rule},
		Rates:  map[generic.EmployeeID]decimal.Decimal{"alice": d("10")},
	})

	assertDecimal(t, "9", got.SupplementHours.Night)
	assertDecimal(t, "9", got.Supplements.Night)
}

func TestCalculate_HolidayFromCalendar(t *testing.T) {
	christmas := generic.NewDate(2025, time.December, 25)

	in := pricing.Input{
		Shifts: []shift.Instance{
			newShift("xmas", christmas, "alice", "08:00", "16:00", 0),
			newShift("boxing", christmas.AddDays(1), "alice", "08:00", "16:00", 0),
		},
		Rules: []pricing.SupplementRule{holidayRule("100")},
		Rates: map[generic.EmployeeID]decimal.Decimal{"alice": d("20")},
	}

	without := pricing.Calculate(in)
	assert.True(t, without.SupplementCost.IsZero(), "no calendar, no holidays")

	in.Holidays = generic.HolidaySet{christmas: "Christmas Day"}
	with := pricing.Calculate(in)
	assertDecimal(t, "160", with.Supplements.Holiday)
	assertDecimal(t, "8", with.SupplementHours.Holiday)
	assert.True(t, with.Lines[0].Classification.IsHoliday)
	assert.False(t, with.Lines[1].Classification.IsHoliday)
}

// =============================================================================
// MISSING DATA AND STATUS
// =============================================================================

func TestCalculate_MissingRateIsZeroNotError(t *testing.T) {
	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{
			newShift("s1", saturday, "ghost", "22:00", "06:00", 0),
			newShift("s2", saturday, "", "08:00", "12:00", 0),
		},
		Rules: []pricing.SupplementRule{nightRule("25"), weekendRule("50")},
	})

	assertDecimal(t, "12", got.TotalHours)
	assert.True(t, got.TotalCost.IsZero())
	assert.Equal(t, []generic.ShiftID{"s1", "s2"}, got.UnpricedShifts)
	assert.False(t, got.IsPriced())
	assert.Equal(t, pricing.RateNone, got.Lines[0].RateSource)
}

func TestCalculate_RateFallback(t *testing.T) {
	in := pricing.Input{
		Rates:       map[generic.EmployeeID]decimal.Decimal{"alice": d("18"), "zero": d("0")},
		DefaultRate: d("12"),
	}

	rate, src := in.RateFor("alice")
	assertDecimal(t, "18", rate)
	assert.Equal(t, pricing.RateEmployee, src)

	rate, src = in.RateFor("zero")
	assertDecimal(t, "12", rate)
	assert.Equal(t, pricing.RateDefault, src)

	rate, src = in.RateFor("")
	assertDecimal(t, "12", rate)
	assert.Equal(t, pricing.RateDefault, src)

	in.DefaultRate = decimal.Zero
	_, src = in.RateFor("bob")
	assert.Equal(t, pricing.RateNone, src)
}

func TestCalculate_SkipsCancelledShifts(t *testing.T) {
	cancelled := newShift("s2", monday, "alice", "08:00", "16:00", 0)
	cancelled.Status = shift.StatusCancelled

	got := pricing.Calculate(pricing.Input{
		Shifts:      []shift.Instance{newShift("s1", monday, "alice", "08:00", "12:00", 0), cancelled},
		DefaultRate: d("10"),
	})

	require.Len(t, got.Lines, 1)
	assertDecimal(t, "40", got.TotalCost)
}

func TestCalculate_CompletedShiftUsesActualTimes(t *testing.T) {
	s := newShift("s1", monday, "alice", "08:00", "16:00", 0)
	s.Status = shift.StatusCompleted
	s.ActualStart = clockPtr("08:00")
	s.ActualEnd = clockPtr("22:00")

	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{s},
		Rules:  []pricing.SupplementRule{nightRule("50")},
		Rates:  map[generic.EmployeeID]decimal.Decimal{"alice": d("10")},
	})

	assertDecimal(t, "14", got.TotalHours)
	assertDecimal(t, "1", got.SupplementHours.Night)
	assertDecimal(t, "145", got.TotalCost)
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestCalculate_TotalHoursSummedInMinutes(t *testing.T) {
	// GIVEN three 20-minute shifts
	got := pricing.Calculate(pricing.Input{
		Shifts: []shift.Instance{
			newShift("a", monday, "alice", "08:00", "08:20", 0),
			newShift("b", monday, "alice", "09:00", "09:20", 0),
			newShift("c", monday, "alice", "10:00", "10:20", 0),
		},
		DefaultRate: d("10"),
	})

	// THEN the week holds exactly one hour
	assert.Equal(t, 60, got.TotalMinutes)
	assertDecimal(t, "1", got.TotalHours)
	assert.Equal(t, 20, got.Lines[0].NetMinutes)

	doubled := got.Add(got)
	assert.Equal(t, 120, doubled.TotalMinutes)
	assertDecimal(t, "2", doubled.TotalHours)
}

func TestCostBreakdown_AddAndRound(t *testing.T) {
	a := pricing.Calculate(pricing.Input{
		Shifts:      []shift.Instance{newShift("a", monday, "alice", "08:00", "08:20", 0)},
		DefaultRate: d("10"),
	})
	b := pricing.Calculate(pricing.Input{
		Shifts:      []shift.Instance{newShift("b", saturday, "bob", "10:00", "12:00", 0)},
		Rules:       []pricing.SupplementRule{weekendRule("50")},
		DefaultRate: d("10"),
	})

	sum := a.Add(b)
	assert.Len(t, sum.Lines, 2)
	assert.True(t, sum.TotalCost.Equal(a.TotalCost.Add(b.TotalCost)))
	assertDecimal(t, "10", sum.Supplements.Weekend)

	rounded := sum.Round(2)
	assertDecimal(t, "2.33", rounded.TotalHours)
	assertDecimal(t, "23.33", rounded.BaseCost)
	assertDecimal(t, "33.33", rounded.TotalCost)
	assert.True(t, rounded.TotalCost.Equal(rounded.BaseCost.Add(rounded.SupplementCost)))
}

func TestSupplementRule_Validate(t *testing.T) {
	require.NoError(t, nightRule("25").Validate())
	require.NoError(t, weekendRule("50").Validate())

	tests := []struct {
		name string
		rule pricing.SupplementRule
	}{
		{"unknown category", pricing.SupplementRule{ID: "x", Category: "sunrise", Kind: pricing.KindFlat}},
		{"unknown kind", pricing.SupplementRule{ID: "x", Category: pricing.CategoryNight, Kind: "bonus"}},
		{"negative amount", pricing.SupplementRule{ID: "x", Category: pricing.CategoryWeekend, Kind: pricing.KindFlat, Amount: d("-1")}},
		{"half window", pricing.SupplementRule{ID: "x", Category: pricing.CategoryNight, Kind: pricing.KindFlat, WindowStart: clockPtr("21:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.rule.Validate(), generic.ErrInvalidRule)
		})
	}
}

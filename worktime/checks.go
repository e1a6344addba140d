package worktime

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// Check is one validation pass. Evaluate receives a single employee's
// active shifts, chronologically ordered, with actual times applied to
// completed shifts.
type Check interface {
	Name() string
	Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation
}

// DefaultChecks returns the five standard passes in evaluation order.
func DefaultChecks() []Check {
	return []Check{
		DailyHoursCheck{},
		BreakCheck{},
		RestCheck{},
		WeeklyHoursCheck{},
		SundayOffCheck{},
	}
}

func datePtr(d generic.Date) *generic.Date { return &d }

// =============================================================================
// DAILY HOURS
// =============================================================================

// DailyHoursCheck sums net hours per calendar date. Overnight shifts count
// towards the date they start on. At most one violation per date.
type DailyHoursCheck struct{}

func (DailyHoursCheck) Name() string { return "daily_hours" }

func (DailyHoursCheck) Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	if !rules.MaxHoursPerDay.IsPositive() && !rules.MaxHoursPerDayExtended.IsPositive() {
		return nil
	}

	var (
		dates   []generic.Date
		minutes = make(map[generic.Date]int)
	)
	for _, s := range shifts {
		if _, seen := minutes[s.Date]; !seen {
			dates = append(dates, s.Date)
		}
		minutes[s.Date] += s.NetMinutes()
	}

	var out []Violation
	for _, date := range dates {
		total := generic.MinutesToHours(minutes[date])
		switch {
		case rules.MaxHoursPerDayExtended.IsPositive() && total.GreaterThan(rules.MaxHoursPerDayExtended):
			out = append(out, Violation{
				Severity:   SeverityCritical,
				Type:       TypeDailyHoursExtended,
				Message:    fmt.Sprintf("%s h scheduled on %s exceeds the extended daily maximum of %s h", total, date, rules.MaxHoursPerDayExtended),
				EmployeeID: employee,
				Date:       datePtr(date),
				Detail:     Detail{Actual: total, Limit: rules.MaxHoursPerDayExtended, Unit: UnitHours},
			})
		case rules.MaxHoursPerDay.IsPositive() && total.GreaterThan(rules.MaxHoursPerDay):
			out = append(out, Violation{
				Severity:   SeverityWarning,
				Type:       TypeDailyHours,
				Message:    fmt.Sprintf("%s h scheduled on %s exceeds the daily maximum of %s h", total, date, rules.MaxHoursPerDay),
				EmployeeID: employee,
				Date:       datePtr(date),
				Detail:     Detail{Actual: total, Limit: rules.MaxHoursPerDay, Unit: UnitHours},
			})
		}
	}
	return out
}

// =============================================================================
// BREAKS
// =============================================================================

// BreakCheck compares each shift's break with the tier its length falls in.
// Length is measured before the break is deducted. The long tier, when it
// applies, replaces the standard tier.
type BreakCheck struct{}

func (BreakCheck) Name() string { return "breaks" }

func (BreakCheck) Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	var out []Violation
	for _, s := range shifts {
		gross := s.GrossHours()

		var (
			required int
			after    decimal.Decimal
			typ      Type
		)
		switch {
		case rules.BreakRequiredAfterHoursLong.IsPositive() && gross.GreaterThanOrEqual(rules.BreakRequiredAfterHoursLong):
			required, after, typ = rules.MinBreakMinutesLong, rules.BreakRequiredAfterHoursLong, TypeBreakTooShortLong
		case rules.BreakRequiredAfterHours.IsPositive() && gross.GreaterThanOrEqual(rules.BreakRequiredAfterHours):
			required, after, typ = rules.MinBreakMinutes, rules.BreakRequiredAfterHours, TypeBreakTooShort
		default:
			continue
		}

		if s.BreakMinutes >= required {
			continue
		}
		out = append(out, Violation{
			Severity: SeverityWarning,
			Type:     typ,
			Message: fmt.Sprintf("shift of %s h needs a break of at least %d min after %s h, has %d min",
				gross, required, after, s.BreakMinutes),
			EmployeeID: employee,
			ShiftID:    s.ID,
			Date:       datePtr(s.Date),
			Detail: Detail{
				Actual: decimal.NewFromInt(int64(s.BreakMinutes)),
				Limit:  decimal.NewFromInt(int64(required)),
				Unit:   UnitMinutes,
			},
		})
	}
	return out
}

// =============================================================================
// REST BETWEEN SHIFTS
// =============================================================================

// RestCheck measures the gap between each shift's end instant and the next
// shift's start instant. Gaps of zero or less are overlapping or duplicated
// records and are skipped.
type RestCheck struct{}

func (RestCheck) Name() string { return "rest" }

func (RestCheck) Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	if !rules.MinRestBetweenShifts.IsPositive() {
		return nil
	}

	var out []Violation
	for i := 1; i < len(shifts); i++ {
		prev, next := shifts[i-1], shifts[i]
		gap := RestHours(prev, next)
		if !gap.IsPositive() || gap.GreaterThanOrEqual(rules.MinRestBetweenShifts) {
			continue
		}
		out = append(out, Violation{
			Severity: SeverityCritical,
			Type:     TypeMinRest,
			Message: fmt.Sprintf("only %s h rest between shift on %s %s and shift on %s %s (minimum %s h)",
				gap, prev.Date, prev.Start, next.Date, next.Start, rules.MinRestBetweenShifts),
			EmployeeID: employee,
			ShiftID:    next.ID,
			Date:       datePtr(next.Date),
			Detail:     Detail{Actual: gap, Limit: rules.MinRestBetweenShifts, Unit: UnitHours},
		})
	}
	return out
}

// RestHours returns the hours between the end of a and the start of b. The
// result is negative when b starts before a ends.
func RestHours(a, b shift.Instance) decimal.Decimal {
	_, aEnd := a.Span()
	bStart, _ := b.Span()
	return generic.MinutesToHours(int(bStart.Sub(aEnd).Minutes()))
}

// =============================================================================
// WEEKLY HOURS
// =============================================================================

// WeeklyHoursCheck sums net hours over the whole window. The three bands are
// exclusive and checked in priority order.
type WeeklyHoursCheck struct{}

func (WeeklyHoursCheck) Name() string { return "weekly_hours" }

func (WeeklyHoursCheck) Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	if len(shifts) == 0 {
		return nil
	}

	minutes := 0
	for _, s := range shifts {
		minutes += s.NetMinutes()
	}
	total := generic.MinutesToHours(minutes)

	v := Violation{EmployeeID: employee, Detail: Detail{Actual: total, Unit: UnitHours}}
	warnAt := rules.WarnThreshold()

	switch {
	case rules.MaxHoursPerWeekAverage.IsPositive() && total.GreaterThan(rules.MaxHoursPerWeekAverage):
		v.Severity, v.Type = SeverityCritical, TypeWeeklyAverage
		v.Detail.Limit = rules.MaxHoursPerWeekAverage
		v.Message = fmt.Sprintf("%s h this week exceeds the average weekly maximum of %s h", total, rules.MaxHoursPerWeekAverage)
	case rules.MaxHoursPerWeek.IsPositive() && total.GreaterThan(rules.MaxHoursPerWeek):
		v.Severity, v.Type = SeverityWarning, TypeWeeklyHours
		v.Detail.Limit = rules.MaxHoursPerWeek
		v.Message = fmt.Sprintf("%s h this week exceeds the weekly maximum of %s h", total, rules.MaxHoursPerWeek)
	case warnAt.IsPositive() && total.GreaterThanOrEqual(warnAt):
		v.Severity, v.Type = SeverityInfo, TypeWeeklyNearLimit
		v.Detail.Limit = warnAt
		v.Message = fmt.Sprintf("%s h this week is at %s%% of the weekly maximum", total, rules.WarnAtPercentOfMax)
	default:
		return nil
	}
	return []Violation{v}
}

// =============================================================================
// SUNDAY OFF
// =============================================================================

// SundayOffCheck notes Sunday work when a Sunday off is required. It only
// ever reports info; enforcement is up to the caller.
type SundayOffCheck struct{}

func (SundayOffCheck) Name() string { return "sunday_off" }

func (SundayOffCheck) Evaluate(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	if !rules.SundayOffRequired {
		return nil
	}

	var (
		first   *shift.Instance
		sundays = make(map[generic.Date]struct{})
	)
	for i := range shifts {
		if !shifts[i].Date.IsSunday() {
			continue
		}
		if first == nil {
			first = &shifts[i]
		}
		sundays[shifts[i].Date] = struct{}{}
	}
	if first == nil {
		return nil
	}

	msg := fmt.Sprintf("scheduled on %d Sunday(s) while a Sunday off is required", len(sundays))
	if rules.SundayOffFrequency > 0 {
		msg += fmt.Sprintf(" every %d week(s)", rules.SundayOffFrequency)
	}
	return []Violation{{
		Severity:   SeverityInfo,
		Type:       TypeSundayWork,
		Message:    msg,
		EmployeeID: employee,
		ShiftID:    first.ID,
		Date:       datePtr(first.Date),
		Detail:     Detail{Actual: decimal.NewFromInt(int64(len(sundays))), Limit: decimal.Zero, Unit: UnitDays},
	}}
}

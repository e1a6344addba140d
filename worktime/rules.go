/*
Package worktime validates shifts against working-time regulations.

PURPOSE:
  Given the shifts of a finite window (usually a week) and the active rule
  set, report every place where the schedule breaks, or comes close to
  breaking, a working-time limit. Findings are data (Violations), never
  errors: the validator detects, the caller decides what to enforce.

PASSES (per employee, independent):
  1. Daily hours      one finding per date, critical over the extended cap,
                      warning over the normal cap
  2. Break adequacy   per shift, long tier supersedes the standard tier
  3. Rest             between chronologically adjacent shifts, critical
  4. Weekly hours     critical over the average cap, warning over the normal
                      cap, info at the warn threshold
  5. Sunday off       info only

  Afterwards all findings are ordered critical, warning, info. Within one
  severity the pass order above is kept.

ZERO THRESHOLDS:
  A zero limit disables the check that reads it. A rule set with only
  MaxHoursPerDay configured runs only the daily warning.

SEE ALSO:
  - checks.go: The five passes
  - violation.go: Violation, Severity and ordering
  - planner/planner.go: Validates many employees concurrently
*/
package worktime

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// =============================================================================
// RULE SET
// =============================================================================

// RuleSet is a named bundle of working-time thresholds. Hours are decimal
// hours; breaks are minutes.
type RuleSet struct {
	ID   string
	Name string

	MaxHoursPerDay         decimal.Decimal
	MaxHoursPerDayExtended decimal.Decimal
	MinRestBetweenShifts   decimal.Decimal
	MaxHoursPerWeek        decimal.Decimal
	MaxHoursPerWeekAverage decimal.Decimal

	BreakRequiredAfterHours     decimal.Decimal
	MinBreakMinutes             int
	BreakRequiredAfterHoursLong decimal.Decimal
	MinBreakMinutesLong         int

	SundayOffRequired  bool
	SundayOffFrequency int // weeks; informational

	WarnAtPercentOfMax decimal.Decimal

	Active bool
}

// WarnThreshold is MaxHoursPerWeekAverage * WarnAtPercentOfMax / 100, or
// zero when either is unset.
func (r RuleSet) WarnThreshold() decimal.Decimal {
	if !r.MaxHoursPerWeekAverage.IsPositive() || !r.WarnAtPercentOfMax.IsPositive() {
		return decimal.Zero
	}
	return generic.Percent(r.MaxHoursPerWeekAverage, r.WarnAtPercentOfMax)
}

func (r RuleSet) Validate() error {
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"max_hours_per_day", r.MaxHoursPerDay},
		{"max_hours_per_day_extended", r.MaxHoursPerDayExtended},
		{"min_rest_between_shifts", r.MinRestBetweenShifts},
		{"max_hours_per_week", r.MaxHoursPerWeek},
		{"max_hours_per_week_average", r.MaxHoursPerWeekAverage},
		{"break_required_after_hours", r.BreakRequiredAfterHours},
		{"break_required_after_hours_long", r.BreakRequiredAfterHoursLong},
		{"warn_at_percent_of_max", r.WarnAtPercentOfMax},
	} {
		if f.v.IsNegative() {
			return fmt.Errorf("rule set %q: %w: %s is negative", r.ID, generic.ErrInvalidRule, f.name)
		}
	}
	if r.MinBreakMinutes < 0 || r.MinBreakMinutesLong < 0 || r.SundayOffFrequency < 0 {
		return fmt.Errorf("rule set %q: %w: negative minutes or frequency", r.ID, generic.ErrInvalidRule)
	}
	if r.MaxHoursPerDay.IsPositive() && r.MaxHoursPerDayExtended.IsPositive() &&
		r.MaxHoursPerDayExtended.LessThan(r.MaxHoursPerDay) {
		return fmt.Errorf("rule set %q: %w: extended daily cap below normal cap", r.ID, generic.ErrInvalidRule)
	}
	if r.MaxHoursPerWeek.IsPositive() && r.MaxHoursPerWeekAverage.IsPositive() &&
		r.MaxHoursPerWeekAverage.LessThan(r.MaxHoursPerWeek) {
		return fmt.Errorf("rule set %q: %w: average weekly cap below normal cap", r.ID, generic.ErrInvalidRule)
	}
	return nil
}

// RuleSets is the configured collection; exactly one must be active.
type RuleSets []RuleSet

// Active returns the single active rule set.
func (rs RuleSets) Active() (RuleSet, error) {
	var (
		found RuleSet
		n     int
	)
	for _, r := range rs {
		if r.Active {
			found = r
			n++
		}
	}
	switch {
	case n == 0:
		return RuleSet{}, generic.ErrNoActiveRuleSet
	case n > 1:
		return RuleSet{}, fmt.Errorf("%w: %d rule sets are active", generic.ErrMultipleActiveRuleSets, n)
	}
	return found, nil
}

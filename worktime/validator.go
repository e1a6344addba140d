package worktime

import (
	"sort"

	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator runs a list of checks per employee. The zero value runs
// DefaultChecks.
type Validator struct {
	Checks []Check
}

// NewValidator returns a validator running checks, or DefaultChecks when
// none are given.
func NewValidator(checks ...Check) *Validator {
	return &Validator{Checks: checks}
}

func (v *Validator) checks() []Check {
	if v == nil || len(v.Checks) == 0 {
		return DefaultChecks()
	}
	return v.Checks
}

// ValidateEmployee validates one employee's shifts out of shifts. Shifts of
// other employees, unassigned shifts and cancelled shifts are ignored.
func (v *Validator) ValidateEmployee(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	own := Prepare(employee, shifts)

	var out []Violation
	for _, c := range v.checks() {
		out = append(out, c.Evaluate(employee, own, rules)...)
	}
	SortBySeverity(out)
	return out
}

// Validate validates every employee found in shifts, in order of first
// appearance, and orders the combined result by severity. Within one
// severity, employee order and per-employee order are kept.
func (v *Validator) Validate(shifts []shift.Instance, rules RuleSet) []Violation {
	var out []Violation
	for _, id := range Employees(shifts) {
		out = append(out, v.ValidateEmployee(id, shifts, rules)...)
	}
	SortBySeverity(out)
	return out
}

// Validate runs the default checks. See Validator.Validate.
func Validate(shifts []shift.Instance, rules RuleSet) []Violation {
	return (*Validator)(nil).Validate(shifts, rules)
}

// ValidateEmployee runs the default checks for one employee.
func ValidateEmployee(employee generic.EmployeeID, shifts []shift.Instance, rules RuleSet) []Violation {
	return (*Validator)(nil).ValidateEmployee(employee, shifts, rules)
}

// =============================================================================
// INPUT PREPARATION
// =============================================================================

// Employees lists the assigned employees of the active shifts, in order of
// first appearance.
func Employees(shifts []shift.Instance) []generic.EmployeeID {
	seen := make(map[generic.EmployeeID]bool)
	var out []generic.EmployeeID
	for _, s := range shifts {
		if !s.IsActive() || s.IsUnfilled() || seen[s.EmployeeID] {
			continue
		}
		seen[s.EmployeeID] = true
		out = append(out, s.EmployeeID)
	}
	return out
}

// Prepare selects the employee's active shifts, applies actual times to
// completed ones and orders them by (date, start).
func Prepare(employee generic.EmployeeID, shifts []shift.Instance) []shift.Instance {
	var own []shift.Instance
	for _, s := range shifts {
		if s.IsActive() && s.EmployeeID == employee && !employee.IsZero() {
			own = append(own, s.Effective())
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		if !own[i].Date.Equal(own[j].Date) {
			return own[i].Date.Before(own[j].Date)
		}
		return own[i].Start < own[j].Start
	})
	return own
}

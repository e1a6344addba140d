/*
Package generic provides the shared primitives of the workforce engine.

PURPOSE:
  This package contains the domain-agnostic types every engine component
  builds on. Whether a component prices a shift, validates a week or
  projects a rotation, it speaks in the same dates, clock times, decimal
  hours and typed identifiers.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: Type-safe IDs for employees, functions, shifts, templates
  - Decimal helpers: Hours and money are decimal.Decimal, never float64

DESIGN PRINCIPLES:
  1. Determinism: No function here reads the wall clock
  2. Precision: Uses decimal.Decimal so 8h is exactly 8, not 7.999999
  3. Type Safety: Strong typing for IDs prevents mixing employee/shift IDs
  4. Totality: Absent values are zero values, not errors

USAGE:
  net := generic.MinutesToHours(480)          // 8
  supplement := generic.Percent(rate, pct)    // rate * pct / 100

SEE ALSO:
  - time.go: Date and ClockTime
  - period.go: Monday-anchored weeks
  - holiday.go: HolidayCalendar interface
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// An empty identifier means "absent": an open shift has no FunctionID, an
// unfilled shift has no EmployeeID.
type EmployeeID string
type FunctionID string
type ShiftID string
type TemplateID string

func (id EmployeeID) IsZero() bool { return id == "" }
func (id FunctionID) IsZero() bool { return id == "" }

// =============================================================================
// DECIMAL HELPERS - Hours and money
// =============================================================================

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// Hours converts a float literal to decimal hours. Intended for configuration
// and tests; engine arithmetic stays in decimal.
func Hours(h float64) decimal.Decimal {
	return decimal.NewFromFloat(h)
}

// MinutesToHours converts whole minutes to decimal hours.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty)
}

// Percent returns base * pct / 100.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// MaxZero floors d at zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

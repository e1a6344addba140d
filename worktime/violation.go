package worktime

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// =============================================================================
// VIOLATIONS
// =============================================================================

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities, most severe first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Type tags are stable, machine-readable identifiers for callers.
type Type string

const (
	TypeDailyHoursExtended Type = "max_daily_hours_extended"
	TypeDailyHours         Type = "max_daily_hours"
	TypeBreakTooShortLong  Type = "break_too_short_long"
	TypeBreakTooShort      Type = "break_too_short"
	TypeMinRest            Type = "min_rest"
	TypeWeeklyAverage      Type = "max_weekly_hours_average"
	TypeWeeklyHours        Type = "max_weekly_hours"
	TypeWeeklyNearLimit    Type = "weekly_hours_near_limit"
	TypeSundayWork         Type = "sunday_work"
)

// Units used in Detail.
const (
	UnitHours   = "hours"
	UnitMinutes = "minutes"
	UnitDays    = "days"
)

// Detail carries the numbers behind a violation for programmatic use.
type Detail struct {
	Actual decimal.Decimal
	Limit  decimal.Decimal
	Unit   string
}

type Violation struct {
	Severity   Severity
	Type       Type
	Message    string
	EmployeeID generic.EmployeeID
	ShiftID    generic.ShiftID // empty when the finding is not about one shift
	Date       *generic.Date
	Detail     Detail
}

// SortBySeverity orders violations critical, warning, info, keeping the
// existing order within a severity.
func SortBySeverity(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Severity.Rank() < vs[j].Severity.Rank()
	})
}

// Summary counts violations by severity.
type Summary struct {
	Critical int
	Warning  int
	Info     int
}

func (s Summary) Total() int { return s.Critical + s.Warning + s.Info }

// HasBlocking reports whether any critical violation exists.
func (s Summary) HasBlocking() bool { return s.Critical > 0 }

func Summarize(vs []Violation) Summary {
	var s Summary
	for _, v := range vs {
		switch v.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warning++
		case SeverityInfo:
			s.Info++
		}
	}
	return s
}

// ByType filters violations with the given tag.
func ByType(vs []Violation, t Type) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Type == t {
			out = append(out, v)
		}
	}
	return out
}

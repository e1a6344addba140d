package ladder

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// AccumulatedHours adds the net hours of completed shifts dated on or before
// through to baseline. Completed shifts count with their actual times when
// recorded. Planned, draft and cancelled shifts have not been worked yet.
func AccumulatedHours(baseline decimal.Decimal, shifts []shift.Instance, through generic.Date) decimal.Decimal {
	minutes := 0
	for _, s := range shifts {
		if s.Status != shift.StatusCompleted || s.Date.After(through) {
			continue
		}
		minutes += s.Effective().NetMinutes()
	}
	return baseline.Add(generic.MinutesToHours(minutes))
}

// Employee is the wage-relevant slice of an employee record.
type Employee struct {
	ID               generic.EmployeeID
	LadderID         string
	AccumulatedHours decimal.Decimal
	OverrideLevel    *int
}

// ResolveRates returns the hourly rate of every employee whose ladder exists
// and is non-empty. Employees without a resolvable rate are absent from the
// map; pricing falls back to its default rate for them.
func ResolveRates(ladders []Ladder, employees []Employee) map[generic.EmployeeID]decimal.Decimal {
	byID := make(map[string]Ladder, len(ladders))
	for _, l := range ladders {
		byID[l.ID] = l
	}

	rates := make(map[generic.EmployeeID]decimal.Decimal, len(employees))
	for _, e := range employees {
		l, ok := byID[e.LadderID]
		if !ok {
			continue
		}
		if res := Resolve(l, e.AccumulatedHours, e.OverrideLevel); res != nil {
			rates[e.ID] = res.HourlyRate
		}
	}
	return rates
}

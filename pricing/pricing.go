package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// Input carries everything Calculate needs. All fields are plain data.
type Input struct {
	Shifts []shift.Instance
	Rules  []SupplementRule

	// Rates maps employees to their resolved hourly rate. Shifts whose
	// employee is missing here (or unassigned) fall back to DefaultRate.
	Rates       map[generic.EmployeeID]decimal.Decimal
	DefaultRate decimal.Decimal

	Holidays generic.HolidayCalendar
}

// RateFor resolves the hourly rate for an employee: their own rate, else the
// default, else zero with RateNone.
func (in Input) RateFor(id generic.EmployeeID) (decimal.Decimal, RateSource) {
	if !id.IsZero() {
		if r, ok := in.Rates[id]; ok && r.IsPositive() {
			return r, RateEmployee
		}
	}
	if in.DefaultRate.IsPositive() {
		return in.DefaultRate, RateDefault
	}
	return decimal.Zero, RateNone
}

// Calculate prices every non-cancelled shift and aggregates the result.
// Completed shifts with recorded clock-in/out are priced on actual times.
func Calculate(in Input) CostBreakdown {
	var out CostBreakdown
	for _, s := range in.Shifts {
		if !s.IsActive() {
			continue
		}

		rate, source := in.RateFor(s.EmployeeID)
		line := PriceShift(s, rate, in.Rules, in.Holidays)
		line.RateSource = source

		if source == RateNone {
			out.UnpricedShifts = append(out.UnpricedShifts, s.ID)
		}

		out.TotalMinutes += line.NetMinutes
		out.BaseCost = out.BaseCost.Add(line.BaseCost)
		out.SupplementCost = out.SupplementCost.Add(line.SupplementCost)
		out.Supplements = out.Supplements.plus(line.CategoryCost)
		out.SupplementHours = out.SupplementHours.plus(line.CategoryHours)
		out.Lines = append(out.Lines, line)
	}
	out.TotalHours = generic.MinutesToHours(out.TotalMinutes)
	out.TotalCost = out.BaseCost.Add(out.SupplementCost)
	return out
}

// PriceShift prices one shift at rate. A zero rate still yields hours and
// any flat supplements; percentage supplements are then zero.
func PriceShift(s shift.Instance, rate decimal.Decimal, rules []SupplementRule, holidays generic.HolidayCalendar) Line {
	eff := s.Effective()
	net := eff.NetHours()
	class := eff.Classify(holidays)

	line := Line{
		ShiftID:        s.ID,
		EmployeeID:     s.EmployeeID,
		Date:           s.Date,
		NetMinutes:     eff.NetMinutes(),
		NetHours:       net,
		Rate:           rate,
		RateSource:     RateEmployee,
		Classification: class,
		BaseCost:       rate.Mul(net),
	}
	if rate.IsZero() {
		line.RateSource = RateNone
	}

	for _, r := range rules {
		h := qualifyingHours(r, eff, net, class)
		if !h.IsPositive() {
			continue
		}
		amount := h.Mul(r.PerHour(rate))

		line.Supplements = append(line.Supplements, Supplement{
			RuleID:   r.ID,
			Category: r.Category,
			Hours:    h,
			Amount:   amount,
		})
		line.SupplementCost = line.SupplementCost.Add(amount)
		line.CategoryCost = line.CategoryCost.with(r.Category, line.CategoryCost.Get(r.Category).Add(amount))
		line.CategoryHours = line.CategoryHours.with(r.Category, decimal.Max(line.CategoryHours.Get(r.Category), h))
	}

	line.TotalCost = line.BaseCost.Add(line.SupplementCost)
	return line
}

// qualifyingHours returns how many of the shift's hours earn rule r.
func qualifyingHours(r SupplementRule, s shift.Instance, net decimal.Decimal, class shift.Classification) decimal.Decimal {
	if !r.AppliesOn(s.Date) {
		return decimal.Zero
	}

	switch r.Category {
	case CategoryNight, CategoryEvening:
		ws, we, _ := r.Window()
		overlap := shift.NightOverlapHours(s.Start, s.End, ws, we)
		// Never more than the paid hours.
		return decimal.Min(overlap, net)
	case CategoryWeekend:
		if class.IsWeekend {
			return net
		}
	case CategoryHoliday:
		if class.IsHoliday {
			return net
		}
	}
	return decimal.Zero
}

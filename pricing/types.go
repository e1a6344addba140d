/*
Package pricing prices shifts: base wage plus condition-based supplements.

PURPOSE:
  Given shifts, per-employee hourly rates and a set of supplement rules,
  compute what the shifts cost. The result is broken out per shift and per
  supplement category so reporting can explain every euro.

CATEGORIES:
  night    time-bounded, hours inside the rule's daily window
  evening  time-bounded, hours inside the rule's daily window
  weekend  whole net hours when the shift date is Saturday or Sunday
  holiday  whole net hours when the calendar marks the date a holiday

AMOUNTS:
  percentage  hours * rate * amount / 100
  flat        hours * amount (amount is per hour)

STACKING:
  Categories are independent and additive. One hour can earn night AND
  weekend AND holiday supplement at once. There is no combined cap.

  Saturday 22:00-06:00, rate 20, night 25%, weekend 50%:
    base     8h * 20        = 160
    night    8h * 20 * 25%  =  40
    weekend  8h * 20 * 50%  =  80
    total                   = 280

MISSING DATA:
  A shift with no employee rate and no default rate is priced at zero and
  listed in CostBreakdown.UnpricedShifts. Pricing never fails.

SEE ALSO:
  - shift/overlap.go: Window overlap arithmetic
  - ladder/accumulate.go: ResolveRates builds the rate map
*/
package pricing

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
)

// =============================================================================
// SUPPLEMENT RULES
// =============================================================================

type Category string

const (
	CategoryNight   Category = "night"
	CategoryEvening Category = "evening"
	CategoryWeekend Category = "weekend"
	CategoryHoliday Category = "holiday"
)

// Categories lists every category in reporting order.
var Categories = []Category{CategoryNight, CategoryEvening, CategoryWeekend, CategoryHoliday}

func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

// TimeBounded reports whether the category is priced by window overlap
// rather than by a whole-day flag.
func (c Category) TimeBounded() bool {
	return c == CategoryNight || c == CategoryEvening
}

type AmountKind string

const (
	KindPercentage AmountKind = "percentage"
	KindFlat       AmountKind = "flat"
)

// Default windows for time-bounded rules that don't carry their own. The
// night window matches the night-shift classification threshold.
var (
	DefaultNightWindow   = [2]generic.ClockTime{shift.NightStartHour * 60, shift.NightEndHour * 60}
	DefaultEveningWindow = [2]generic.ClockTime{18 * 60, shift.NightStartHour * 60}
)

type SupplementRule struct {
	ID       string
	Name     string
	Category Category
	Kind     AmountKind
	Amount   decimal.Decimal

	// Daily window for night/evening rules. Both or neither must be set.
	WindowStart *generic.ClockTime
	WindowEnd   *generic.ClockTime

	// Empty means every day.
	Weekdays []time.Weekday
}

func (r SupplementRule) Validate() error {
	if !r.Category.IsValid() {
		return fmt.Errorf("supplement rule %q: %w: unknown category %q", r.ID, generic.ErrInvalidRule, r.Category)
	}
	if r.Kind != KindPercentage && r.Kind != KindFlat {
		return fmt.Errorf("supplement rule %q: %w: unknown amount kind %q", r.ID, generic.ErrInvalidRule, r.Kind)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("supplement rule %q: %w: negative amount", r.ID, generic.ErrInvalidRule)
	}
	if (r.WindowStart == nil) != (r.WindowEnd == nil) {
		return fmt.Errorf("supplement rule %q: %w: window needs both start and end", r.ID, generic.ErrInvalidRule)
	}
	if r.WindowStart != nil && (!r.WindowStart.Valid() || !r.WindowEnd.Valid()) {
		return fmt.Errorf("supplement rule %q: %w: window outside the day", r.ID, generic.ErrInvalidRule)
	}
	return nil
}

// Window returns the rule's daily window, falling back to the category
// default. ok is false for categories that are not time-bounded.
func (r SupplementRule) Window() (start, end generic.ClockTime, ok bool) {
	if !r.Category.TimeBounded() {
		return 0, 0, false
	}
	if r.WindowStart != nil && r.WindowEnd != nil {
		return *r.WindowStart, *r.WindowEnd, true
	}
	if r.Category == CategoryEvening {
		return DefaultEveningWindow[0], DefaultEveningWindow[1], true
	}
	return DefaultNightWindow[0], DefaultNightWindow[1], true
}

// AppliesOn checks the weekday predicate.
func (r SupplementRule) AppliesOn(date generic.Date) bool {
	return len(r.Weekdays) == 0 || slices.Contains(r.Weekdays, date.Weekday())
}

// PerHour returns the supplement money earned per qualifying hour.
func (r SupplementRule) PerHour(rate decimal.Decimal) decimal.Decimal {
	if r.Kind == KindFlat {
		return r.Amount
	}
	return generic.Percent(rate, r.Amount)
}

// =============================================================================
// OUTPUT
// =============================================================================

// Totals holds one decimal per category.
type Totals struct {
	Night   decimal.Decimal
	Evening decimal.Decimal
	Weekend decimal.Decimal
	Holiday decimal.Decimal
}

func (t Totals) Get(c Category) decimal.Decimal {
	switch c {
	case CategoryNight:
		return t.Night
	case CategoryEvening:
		return t.Evening
	case CategoryWeekend:
		return t.Weekend
	case CategoryHoliday:
		return t.Holiday
	}
	return decimal.Zero
}

func (t Totals) with(c Category, v decimal.Decimal) Totals {
	switch c {
	case CategoryNight:
		t.Night = v
	case CategoryEvening:
		t.Evening = v
	case CategoryWeekend:
		t.Weekend = v
	case CategoryHoliday:
		t.Holiday = v
	}
	return t
}

func (t Totals) plus(o Totals) Totals {
	return Totals{
		Night:   t.Night.Add(o.Night),
		Evening: t.Evening.Add(o.Evening),
		Weekend: t.Weekend.Add(o.Weekend),
		Holiday: t.Holiday.Add(o.Holiday),
	}
}

func (t Totals) round(places int32) Totals {
	return Totals{
		Night:   t.Night.Round(places),
		Evening: t.Evening.Round(places),
		Weekend: t.Weekend.Round(places),
		Holiday: t.Holiday.Round(places),
	}
}

func (t Totals) Sum() decimal.Decimal {
	return t.Night.Add(t.Evening).Add(t.Weekend).Add(t.Holiday)
}

// RateSource tells where a line's hourly rate came from.
type RateSource string

const (
	RateEmployee RateSource = "employee"
	RateDefault  RateSource = "default"
	RateNone     RateSource = "none"
)

// Supplement is one rule's contribution to one shift.
type Supplement struct {
	RuleID   string
	Category Category
	Hours    decimal.Decimal
	Amount   decimal.Decimal
}

// Line is the priced form of one shift.
type Line struct {
	ShiftID        generic.ShiftID
	EmployeeID     generic.EmployeeID
	Date           generic.Date
	NetMinutes     int
	NetHours       decimal.Decimal
	Rate           decimal.Decimal
	RateSource     RateSource
	Classification shift.Classification
	BaseCost       decimal.Decimal
	Supplements    []Supplement
	SupplementCost decimal.Decimal
	TotalCost      decimal.Decimal

	// Per category. Hours are the qualifying hours, not summed across rules
	// of the same category.
	CategoryCost  Totals
	CategoryHours Totals
}

type CostBreakdown struct {
	TotalMinutes   int
	TotalHours     decimal.Decimal
	BaseCost       decimal.Decimal
	SupplementCost decimal.Decimal
	TotalCost      decimal.Decimal

	Supplements     Totals // money per category
	SupplementHours Totals // qualifying hours per category

	Lines          []Line
	UnpricedShifts []generic.ShiftID
}

// Add merges two breakdowns.
func (b CostBreakdown) Add(o CostBreakdown) CostBreakdown {
	return CostBreakdown{
		TotalMinutes:    b.TotalMinutes + o.TotalMinutes,
		TotalHours:      generic.MinutesToHours(b.TotalMinutes + o.TotalMinutes),
		BaseCost:        b.BaseCost.Add(o.BaseCost),
		SupplementCost:  b.SupplementCost.Add(o.SupplementCost),
		TotalCost:       b.TotalCost.Add(o.TotalCost),
		Supplements:     b.Supplements.plus(o.Supplements),
		SupplementHours: b.SupplementHours.plus(o.SupplementHours),
		Lines:           append(slices.Clip(b.Lines), o.Lines...),
		UnpricedShifts:  append(slices.Clip(b.UnpricedShifts), o.UnpricedShifts...),
	}
}

// Round rounds the aggregate money and hours for display. Supplement and
// total cost are recomputed from the rounded parts so that
// TotalCost == BaseCost + SupplementCost still holds. Lines are untouched.
func (b CostBreakdown) Round(places int32) CostBreakdown {
	out := b
	out.TotalHours = b.TotalHours.Round(places)
	out.BaseCost = b.BaseCost.Round(places)
	out.Supplements = b.Supplements.round(places)
	out.SupplementHours = b.SupplementHours.round(places)
	out.SupplementCost = out.Supplements.Sum()
	out.TotalCost = out.BaseCost.Add(out.SupplementCost)
	return out
}

// IsPriced reports whether every shift found a rate.
func (b CostBreakdown) IsPriced() bool {
	return len(b.UnpricedShifts) == 0
}

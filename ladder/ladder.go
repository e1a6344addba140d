/*
Package ladder resolves hourly pay rates from seniority-based wage ladders.

PURPOSE:
  A wage ladder is an ordered list of levels, each with an hourly rate and
  the accumulated worked hours needed to reach it. As an employee works,
  they climb the ladder. Payroll planners may also pin an employee to a
  level manually.

RESOLUTION:
  1. Manual override naming an existing level wins outright
  2. Otherwise the highest level whose MinHours <= accumulated hours
  3. If no level qualifies, the lowest level
  4. An empty ladder resolves to nil (no applicable rate)

INVARIANT:
  Levels are strictly increasing in both level number and MinHours.
  Validate() enforces this at the boundary where a ladder is first read;
  Resolve() itself never fails.

EXAMPLE:
  l := ladder.Ladder{Levels: []ladder.Level{
      {Number: 1, HourlyRate: d("14.00"), MinHours: d("0")},
      {Number: 2, HourlyRate: d("15.50"), MinHours: d("1000")},
      {Number: 3, HourlyRate: d("17.00"), MinHours: d("2500")},
  }}

  res := ladder.Resolve(l, d("1200"), nil)
  // res.Level.Number == 2, res.HoursToNext == 1300

SEE ALSO:
  - pricing/pricing.go: Consumes the resolved rates
  - rollout/rollout.go: Uses rates for cost estimates
*/
package ladder

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// =============================================================================
// LADDER
// =============================================================================

type Level struct {
	Number     int
	HourlyRate decimal.Decimal
	MinHours   decimal.Decimal
}

type Ladder struct {
	ID     string
	Name   string
	Levels []Level
}

// LadderOrderError points at the first pair of levels breaking monotonicity.
type LadderOrderError struct {
	LadderID string
	Previous Level
	Current  Level
}

func (e *LadderOrderError) Error() string {
	return fmt.Sprintf("ladder %q: level %d (min %s h) does not follow level %d (min %s h)",
		e.LadderID, e.Current.Number, e.Current.MinHours, e.Previous.Number, e.Previous.MinHours)
}

func (e *LadderOrderError) Unwrap() error {
	return generic.ErrNonMonotonicLadder
}

// Validate checks that levels, ordered by number, are strictly increasing in
// both number and MinHours. An empty ladder is valid.
func (l Ladder) Validate() error {
	sorted := l.sorted()
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Number == prev.Number || !cur.MinHours.GreaterThan(prev.MinHours) {
			return &LadderOrderError{LadderID: l.ID, Previous: prev, Current: cur}
		}
	}
	for _, lv := range sorted {
		if lv.HourlyRate.IsNegative() || lv.MinHours.IsNegative() {
			return fmt.Errorf("ladder %q level %d: %w: negative rate or threshold", l.ID, lv.Number, generic.ErrInvalidRule)
		}
	}
	return nil
}

// Level returns the level with the given number.
func (l Ladder) Level(number int) (Level, bool) {
	for _, lv := range l.Levels {
		if lv.Number == number {
			return lv, true
		}
	}
	return Level{}, false
}

func (l Ladder) sorted() []Level {
	out := make([]Level, len(l.Levels))
	copy(out, l.Levels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// =============================================================================
// RESOLUTION
// =============================================================================

type Resolution struct {
	Level            Level
	HourlyRate       decimal.Decimal
	AccumulatedHours decimal.Decimal
	Overridden       bool

	// Only set when not overridden and a higher level exists.
	Next        *Level
	HoursToNext *decimal.Decimal
}

// Progress returns how far, in percent, the employee has come from the
// current level's threshold towards the next one. It is 100 at the top of
// the ladder and 0 when overridden.
func (r Resolution) Progress() decimal.Decimal {
	if r.Overridden {
		return decimal.Zero
	}
	if r.Next == nil {
		return decimal.NewFromInt(100)
	}
	span := r.Next.MinHours.Sub(r.Level.MinHours)
	if !span.IsPositive() {
		return decimal.Zero
	}
	done := generic.MaxZero(r.AccumulatedHours.Sub(r.Level.MinHours))
	pct := done.Mul(decimal.NewFromInt(100)).Div(span)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

// Resolve returns the applicable level for accumulatedHours, or nil for an
// empty ladder. A non-nil override naming an existing level wins; an
// override naming a missing level is ignored.
func Resolve(l Ladder, accumulatedHours decimal.Decimal, override *int) *Resolution {
	levels := l.sorted()
	if len(levels) == 0 {
		return nil
	}

	if override != nil {
		if lv, ok := l.Level(*override); ok {
			return &Resolution{
				Level:            lv,
				HourlyRate:       lv.HourlyRate,
				AccumulatedHours: accumulatedHours,
				Overridden:       true,
			}
		}
	}

	idx := 0
	for i := len(levels) - 1; i >= 0; i-- {
		if levels[i].MinHours.LessThanOrEqual(accumulatedHours) {
			idx = i
			break
		}
	}

	res := &Resolution{
		Level:            levels[idx],
		HourlyRate:       levels[idx].HourlyRate,
		AccumulatedHours: accumulatedHours,
	}
	if idx+1 < len(levels) {
		next := levels[idx+1]
		remaining := generic.MaxZero(next.MinHours.Sub(accumulatedHours))
		res.Next = &next
		res.HoursToNext = &remaining
	}
	return res
}

// Package shift implements the shift metrics calculator: durations,
// break-adjusted net hours, night/weekend/holiday classification and the
// overlap of a shift with a midnight-crossing time window.
package shift

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// =============================================================================
// SHIFT INSTANCE - A concrete scheduled work period
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Instance is a scheduled shift. Start and End are wall-clock times on Date;
// End <= Start means the shift runs past midnight into the next day.
type Instance struct {
	ID         generic.ShiftID
	Date       generic.Date
	FunctionID generic.FunctionID // empty = open shift
	EmployeeID generic.EmployeeID // empty = unfilled

	Start        generic.ClockTime
	End          generic.ClockTime
	BreakMinutes int

	// Realized clock-in/out, set once the shift has been worked.
	ActualStart *generic.ClockTime
	ActualEnd   *generic.ClockTime

	Status Status
}

// IsActive reports whether the shift still counts. Cancelled shifts remain
// in the series for history but are never priced, validated or matched.
func (s Instance) IsActive() bool { return s.Status != StatusCancelled }

func (s Instance) IsOpen() bool       { return s.FunctionID.IsZero() }
func (s Instance) IsUnfilled() bool   { return s.EmployeeID.IsZero() }
func (s Instance) IsOvernight() bool  { return s.End <= s.Start }
func (s Instance) GrossMinutes() int  { return GrossMinutes(s.Start, s.End) }
func (s Instance) GrossHours() decimal.Decimal {
	return generic.MinutesToHours(s.GrossMinutes())
}

// NetHours returns the break-adjusted planned hours.
func (s Instance) NetHours() decimal.Decimal {
	return ComputeShiftHours(s.Start, s.End, s.BreakMinutes)
}

func (s Instance) NetMinutes() int {
	return NetMinutes(s.Start, s.End, s.BreakMinutes)
}

// Effective returns the shift with its actual times in place of the planned
// ones when it has been completed and both clock-in and clock-out exist.
func (s Instance) Effective() Instance {
	if s.Status != StatusCompleted || s.ActualStart == nil || s.ActualEnd == nil {
		return s
	}
	out := s
	out.Start = *s.ActualStart
	out.End = *s.ActualEnd
	return out
}

// Span returns the absolute start and end instants of the shift, with the
// end on the following day for overnight shifts.
func (s Instance) Span() (time.Time, time.Time) {
	start := s.Date.At(s.Start)
	return start, start.Add(time.Duration(s.GrossMinutes()) * time.Minute)
}

// Validate checks the record's shape. It does not apply business rules.
func (s Instance) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: shift %q has no date", generic.ErrInvalidShift, s.ID)
	}
	if !s.Start.Valid() || !s.End.Valid() {
		return fmt.Errorf("%w: shift %q has a clock time outside 00:00-23:59", generic.ErrInvalidShift, s.ID)
	}
	if s.BreakMinutes < 0 {
		return fmt.Errorf("%w: shift %q has negative break", generic.ErrInvalidShift, s.ID)
	}
	if s.Status != "" && !s.Status.IsValid() {
		return fmt.Errorf("%w: shift %q has unknown status %q", generic.ErrInvalidShift, s.ID, s.Status)
	}
	return nil
}

// Active filters out cancelled shifts, keeping order.
func Active(shifts []Instance) []Instance {
	out := make([]Instance, 0, len(shifts))
	for _, s := range shifts {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

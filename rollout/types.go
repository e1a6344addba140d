/*
Package rollout projects weekly shift templates onto calendar weeks.

PURPOSE:
  A template describes one typical week of shifts. A rotation group cycles
  through several templates, one per week. A rollout materializes those
  patterns over a horizon of weeks so a planner can review them before any
  shift is created.

  The projector performs no writes. Existing shifts and holidays are
  pre-fetched by the caller and passed in as plain data, so the same input
  always yields the same projection, including candidate IDs.

ROTATION:
  week w uses templates[(w + offset) mod len(templates)]

    templates [A, B], offset 0:  A B A B ...
    templates [A, B], offset 1:  B A B A ...

CANDIDATE STATUS:
  new       no matching shift exists, will be created
  existing  a matching shift exists and the policy allows overwriting it
  conflict  a matching shift exists and overwriting is off, or another
            entry of the same rollout already produces that shift

  Matching is on date + function + start time among non-cancelled shifts.
  Conflicts stay in the projection for visibility but are not counted as
  creatable and are left out of hours and cost.

COST:
  Each week carries an advisory estimate from pricing.Calculate. It uses
  resolved ladder rates when given and the default rate otherwise. It is
  not payroll.

SEE ALSO:
  - rollout.go: Project
  - pricing/pricing.go: Cost estimate
  - planner/planner.go: Pre-fetches inputs and runs a preview
*/
package rollout

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/shift"
)

// =============================================================================
// TEMPLATES
// =============================================================================

// Entry is one shift of a weekly template. DayOfWeek counts from Monday:
// 0 is Monday, 6 is Sunday.
type Entry struct {
	DayOfWeek    int
	FunctionID   generic.FunctionID
	Start        generic.ClockTime
	End          generic.ClockTime
	BreakMinutes int
	EmployeeID   generic.EmployeeID // pinned employee, optional
}

func (e Entry) Validate() error {
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return fmt.Errorf("%w: day of week %d outside 0-6", generic.ErrInvalidTemplate, e.DayOfWeek)
	}
	if !e.Start.Valid() || !e.End.Valid() {
		return fmt.Errorf("%w: clock time outside 00:00-23:59", generic.ErrInvalidTemplate)
	}
	if e.BreakMinutes < 0 {
		return fmt.Errorf("%w: negative break", generic.ErrInvalidTemplate)
	}
	return nil
}

func (e Entry) NetHours() decimal.Decimal {
	return shift.ComputeShiftHours(e.Start, e.End, e.BreakMinutes)
}

type Template struct {
	ID      generic.TemplateID
	Name    string
	Entries []Entry
}

func (t Template) Validate() error {
	for i, e := range t.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("template %q entry %d: %w", t.ID, i, err)
		}
	}
	return nil
}

// RotationGroup cycles through Templates, one per week. RotationLength, when
// set, must equal the number of templates.
type RotationGroup struct {
	ID             string
	Name           string
	Templates      []Template
	RotationLength int
	StartingOffset int
}

func (g RotationGroup) Validate() error {
	if len(g.Templates) == 0 {
		return fmt.Errorf("rotation %q: %w: no templates", g.ID, generic.ErrInvalidTemplate)
	}
	if g.RotationLength != 0 && g.RotationLength != len(g.Templates) {
		return fmt.Errorf("rotation %q: %w: rotation length %d but %d templates",
			g.ID, generic.ErrInvalidTemplate, g.RotationLength, len(g.Templates))
	}
	for _, t := range g.Templates {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("rotation %q: %w", g.ID, err)
		}
	}
	return nil
}

// ActiveTemplateIndex returns (week + offset) mod n, always in [0, n).
func ActiveTemplateIndex(week, offset, n int) int {
	if n <= 0 {
		return 0
	}
	return ((week+offset)%n + n) % n
}

// =============================================================================
// INPUT
// =============================================================================

type Policy struct {
	SkipHolidays            bool
	OverwriteExisting       bool
	KeepEmployeeAssignments bool
}

// Input describes one rollout. Exactly one of Template and Rotation is set.
// The horizon is Weeks when positive, otherwise Cycles full passes through
// the rotation.
type Input struct {
	Template *Template
	Rotation *RotationGroup

	StartWeek generic.Date // any day; normalized to its Monday
	Weeks     int
	Cycles    int
	Offset    *int // overrides Rotation.StartingOffset

	Policy   Policy
	Holidays generic.HolidayCalendar

	// Non-cancelled shifts in the horizon, fetched by the caller.
	Existing []shift.Instance

	// Status given to projected shifts; draft when empty.
	Status shift.Status

	// Cost estimate inputs.
	Rules       []pricing.SupplementRule
	Rates       map[generic.EmployeeID]decimal.Decimal
	DefaultRate decimal.Decimal
}

func (in Input) Validate() error {
	switch {
	case in.Template == nil && in.Rotation == nil:
		return fmt.Errorf("%w: neither template nor rotation given", generic.ErrInvalidTemplate)
	case in.Template != nil && in.Rotation != nil:
		return fmt.Errorf("%w: both template and rotation given", generic.ErrInvalidTemplate)
	case in.Template != nil:
		if err := in.Template.Validate(); err != nil {
			return err
		}
	default:
		if err := in.Rotation.Validate(); err != nil {
			return err
		}
	}

	if in.StartWeek.IsZero() {
		return fmt.Errorf("%w: no start week", generic.ErrInvalidHorizon)
	}
	if in.Weeks < 0 || in.Cycles < 0 {
		return fmt.Errorf("%w: negative horizon", generic.ErrInvalidHorizon)
	}
	if in.Cycles > 0 && in.Rotation == nil && in.Weeks == 0 {
		return fmt.Errorf("%w: cycles need a rotation group", generic.ErrInvalidHorizon)
	}
	if in.Horizon() == 0 {
		return fmt.Errorf("%w: horizon is zero weeks", generic.ErrInvalidHorizon)
	}
	if in.Status != "" && !in.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", generic.ErrInvalidShift, in.Status)
	}
	return nil
}

// Horizon returns the number of weeks to project.
func (in Input) Horizon() int {
	if in.Weeks > 0 {
		return in.Weeks
	}
	if in.Rotation != nil {
		return in.Cycles * len(in.Rotation.Templates)
	}
	return 0
}

func (in Input) offset() int {
	if in.Offset != nil {
		return *in.Offset
	}
	if in.Rotation != nil {
		return in.Rotation.StartingOffset
	}
	return 0
}

// templateFor returns the template active in week w and its index.
func (in Input) templateFor(w int) (Template, int) {
	if in.Template != nil {
		return *in.Template, 0
	}
	idx := ActiveTemplateIndex(w, in.offset(), len(in.Rotation.Templates))
	return in.Rotation.Templates[idx], idx
}

// =============================================================================
// OUTPUT
// =============================================================================

type Status string

const (
	StatusNew      Status = "new"
	StatusExisting Status = "existing"
	StatusConflict Status = "conflict"
)

type Candidate struct {
	Shift      shift.Instance
	Status     Status
	Reason     string          // set for conflicts
	ExistingID generic.ShiftID // the matched shift, for existing and conflict

	TemplateID     generic.TemplateID
	EntryIndex     int
	Classification shift.Classification
	NetHours       decimal.Decimal
}

// Creatable reports whether the candidate would be written by a rollout.
func (c Candidate) Creatable() bool {
	return c.Status == StatusNew || c.Status == StatusExisting
}

// SkippedEntry is a template entry dropped because its date is a holiday.
type SkippedEntry struct {
	Date        generic.Date
	HolidayName string
	Entry       Entry
}

type WeeklyProjection struct {
	WeekIndex     int
	WeekStart     generic.Date
	TemplateID    generic.TemplateID
	TemplateIndex int

	Candidates      []Candidate
	SkippedHolidays []SkippedEntry

	NewCount      int
	ExistingCount int
	ConflictCount int

	TotalHours    decimal.Decimal // creatable candidates only
	EstimatedCost pricing.CostBreakdown
}

// Summary aggregates a projection.
type Summary struct {
	Weeks           int
	New             int
	Existing        int
	Conflicts       int
	SkippedHolidays int
	TotalHours      decimal.Decimal
	EstimatedCost   pricing.CostBreakdown
}

func (s Summary) Creatable() int { return s.New + s.Existing }

func Summarize(weeks []WeeklyProjection) Summary {
	s := Summary{Weeks: len(weeks)}
	for _, w := range weeks {
		s.New += w.NewCount
		s.Existing += w.ExistingCount
		s.Conflicts += w.ConflictCount
		s.SkippedHolidays += len(w.SkippedHolidays)
		s.EstimatedCost = s.EstimatedCost.Add(w.EstimatedCost)
	}
	s.TotalHours = s.EstimatedCost.TotalHours
	return s
}

// Creatable returns the candidates a rollout would write, in projection
// order.
func Creatable(weeks []WeeklyProjection) []Candidate {
	var out []Candidate
	for _, w := range weeks {
		for _, c := range w.Candidates {
			if c.Creatable() {
				out = append(out, c)
			}
		}
	}
	return out
}

package generic

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive range of calendar days.
//
// Examples:
//   - A scheduling week: Monday - Sunday
//   - A rollout horizon: first Monday - last Sunday
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Validate rejects a period whose end precedes its start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEK - Monday-anchored scheduling week
// =============================================================================

// WeekOf returns the Monday-Sunday week containing d.
func WeekOf(d Date) Period {
	start := d.WeekStart()
	return Period{Start: start, End: start.AddDays(6)}
}

// Weeks returns the n consecutive weeks starting with the week containing d.
func Weeks(d Date, n int) []Period {
	weeks := make([]Period, 0, n)
	start := d.WeekStart()
	for i := 0; i < n; i++ {
		s := start.AddWeeks(i)
		weeks = append(weeks, Period{Start: s, End: s.AddDays(6)})
	}
	return weeks
}

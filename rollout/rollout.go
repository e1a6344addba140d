package rollout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/shift"
)

// Namespace seeds the name-based UUIDs of projected shifts.
var Namespace = uuid.MustParse("6f1c9a52-3d7e-4b8a-9c21-5e0f4a7b8d13")

// slotKey identifies a shift slot for conflict matching.
type slotKey struct {
	date     generic.Date
	function generic.FunctionID
	start    generic.ClockTime
}

func keyOf(s shift.Instance) slotKey {
	return slotKey{date: s.Date, function: s.FunctionID, start: s.Start}
}

// CandidateID returns the deterministic ID of the shift projected from entry
// index idx of template on date.
func CandidateID(template generic.TemplateID, idx int, date generic.Date, e Entry) generic.ShiftID {
	name := strings.Join([]string{
		string(template),
		fmt.Sprint(idx),
		date.String(),
		string(e.FunctionID),
		e.Start.String(),
	}, "|")
	return generic.ShiftID(uuid.NewSHA1(Namespace, []byte(name)).String())
}

// =============================================================================
// PROJECTION
// =============================================================================

// Project expands the input into one WeeklyProjection per week of the
// horizon. It fails only on malformed input.
func Project(in Input) ([]WeeklyProjection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing := make(map[slotKey]shift.Instance)
	for _, s := range in.Existing {
		if !s.IsActive() {
			continue
		}
		if _, dup := existing[keyOf(s)]; !dup {
			existing[keyOf(s)] = s
		}
	}

	status := in.Status
	if status == "" {
		status = shift.StatusDraft
	}

	var (
		horizon = generic.Weeks(in.StartWeek, in.Horizon())
		claimed = make(map[slotKey]generic.ShiftID)
		weeks   = make([]WeeklyProjection, 0, len(horizon))
	)
	for w, week := range horizon {
		tpl, idx := in.templateFor(w)
		wp := WeeklyProjection{
			WeekIndex:     w,
			WeekStart:     week.Start,
			TemplateID:    tpl.ID,
			TemplateIndex: idx,
		}

		var priced []shift.Instance
		for i, e := range tpl.Entries {
			date := wp.WeekStart.AddDays(e.DayOfWeek)

			if in.Policy.SkipHolidays && generic.IsHolidayOn(in.Holidays, date) {
				wp.SkippedHolidays = append(wp.SkippedHolidays, SkippedEntry{
					Date:        date,
					HolidayName: holidayName(in.Holidays, date),
					Entry:       e,
				})
				continue
			}

			c := Candidate{
				Shift: shift.Instance{
					ID:           CandidateID(tpl.ID, i, date, e),
					Date:         date,
					FunctionID:   e.FunctionID,
					Start:        e.Start,
					End:          e.End,
					BreakMinutes: e.BreakMinutes,
					Status:       status,
				},
				TemplateID:     tpl.ID,
				EntryIndex:     i,
				Classification: shift.ClassifyWith(date, e.Start, in.Holidays),
				NetHours:       e.NetHours(),
			}
			if in.Policy.KeepEmployeeAssignments {
				c.Shift.EmployeeID = e.EmployeeID
			}

			key := keyOf(c.Shift)
			prior, exists := existing[key]
			switch {
			case claimed[key] != "":
				c.Status = StatusConflict
				c.ExistingID = claimed[key]
				c.Reason = fmt.Sprintf("another entry of this rollout already produces %s %s at %s",
					describeFunction(key.function), date, e.Start)
			case exists && !in.Policy.OverwriteExisting:
				c.Status = StatusConflict
				c.ExistingID = prior.ID
				c.Reason = conflictReason(prior)
			case exists:
				c.Status = StatusExisting
				c.ExistingID = prior.ID
			default:
				c.Status = StatusNew
			}

			switch c.Status {
			case StatusNew:
				wp.NewCount++
			case StatusExisting:
				wp.ExistingCount++
			case StatusConflict:
				wp.ConflictCount++
			}
			if c.Creatable() {
				claimed[key] = c.Shift.ID
				priced = append(priced, c.Shift)
			}
			wp.Candidates = append(wp.Candidates, c)
		}

		wp.EstimatedCost = pricing.Calculate(pricing.Input{
			Shifts:      priced,
			Rules:       in.Rules,
			Rates:       in.Rates,
			DefaultRate: in.DefaultRate,
			Holidays:    in.Holidays,
		})
		wp.TotalHours = wp.EstimatedCost.TotalHours
		weeks = append(weeks, wp)
	}
	return weeks, nil
}

func conflictReason(prior shift.Instance) string {
	who := "unassigned"
	if !prior.EmployeeID.IsZero() {
		who = "assigned to " + string(prior.EmployeeID)
	}
	return fmt.Sprintf("%s %s at %s already scheduled as shift %s (%s, %s)",
		describeFunction(prior.FunctionID), prior.Date, prior.Start, prior.ID, prior.Status, who)
}

func describeFunction(id generic.FunctionID) string {
	if id.IsZero() {
		return "open shift"
	}
	return "function " + string(id)
}

func holidayName(cal generic.HolidayCalendar, date generic.Date) string {
	if named, ok := cal.(interface{ Name(generic.Date) string }); ok {
		return named.Name(date)
	}
	return ""
}

/*
Package calendar provides a jurisdiction holiday calendar.

PURPOSE:
  The engine asks one question of a calendar: is this date a holiday? This
  package answers it from a list of named holidays, each either a fixed date
  (Easter Monday 2025-04-21) or an RFC 5545 recurrence rule (Christmas,
  FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25).

RECURRENCE ANCHOR:
  Rules without a DTSTART are anchored on 1 January of the year being
  queried, at 00:00 UTC. Yearly and monthly rules don't depend on the
  anchor; rules with an INTERVAL should carry their own DTSTART.

DETERMINISM:
  Expand() turns the calendar into a generic.HolidaySet for a date range.
  The rollout projector takes that plain map, never a live calendar.

SEE ALSO:
  - generic/holiday.go: HolidayCalendar and HolidaySet
  - factory/config.go: Builds a Calendar from configuration
*/
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/warp/workforce-engine/generic"
)

// Holiday is one configured holiday. Exactly one of Date and RRule is set.
type Holiday struct {
	Name  string
	Date  generic.Date
	RRule string
}

// Occurrence is a holiday on a concrete date.
type Occurrence struct {
	Date generic.Date
	Name string
}

type recurring struct {
	name   string
	option rrule.ROption
}

// Calendar is immutable after New and safe for concurrent use.
type Calendar struct {
	fixed     map[generic.Date]string
	recurring []recurring
}

var _ generic.HolidayCalendar = (*Calendar)(nil)

// New builds a calendar. A holiday with both or neither of Date and RRule,
// or with a malformed rule, is rejected.
func New(holidays ...Holiday) (*Calendar, error) {
	c := &Calendar{fixed: make(map[generic.Date]string)}
	for i, h := range holidays {
		hasRule := strings.TrimSpace(h.RRule) != ""
		switch {
		case hasRule && !h.Date.IsZero():
			return nil, fmt.Errorf("holiday %d (%s): %w: both date and rrule set", i, h.Name, generic.ErrInvalidRule)
		case !hasRule && h.Date.IsZero():
			return nil, fmt.Errorf("holiday %d (%s): %w: neither date nor rrule set", i, h.Name, generic.ErrInvalidRule)
		case hasRule:
			opt, err := rrule.StrToROption(strings.TrimPrefix(strings.TrimSpace(h.RRule), "RRULE:"))
			if err != nil {
				return nil, fmt.Errorf("holiday %d (%s): %w: %v", i, h.Name, generic.ErrInvalidRule, err)
			}
			// NewRRule rejects some options StrToROption accepts.
			if _, err := rrule.NewRRule(withAnchor(*opt, 2000)); err != nil {
				return nil, fmt.Errorf("holiday %d (%s): %w: %v", i, h.Name, generic.ErrInvalidRule, err)
			}
			c.recurring = append(c.recurring, recurring{name: h.Name, option: *opt})
		default:
			c.fixed[h.Date] = h.Name
		}
	}
	return c, nil
}

// MustNew is New for holidays known to be valid.
func MustNew(holidays ...Holiday) *Calendar {
	c, err := New(holidays...)
	if err != nil {
		panic(err)
	}
	return c
}

func withAnchor(opt rrule.ROption, year int) rrule.ROption {
	if opt.Dtstart.IsZero() {
		opt.Dtstart = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return opt
}

// IsHoliday reports whether date is a holiday. A nil calendar has none.
func (c *Calendar) IsHoliday(date generic.Date) bool {
	if c == nil {
		return false
	}
	return len(c.Holidays(date, date)) > 0
}

// Holidays lists the holidays in [from, to], ordered by date then name. A
// date matched by several holidays appears once per holiday.
func (c *Calendar) Holidays(from, to generic.Date) []Occurrence {
	if c == nil || to.Before(from) {
		return nil
	}

	var out []Occurrence
	for date, name := range c.fixed {
		if !date.Before(from) && !date.After(to) {
			out = append(out, Occurrence{Date: date, Name: name})
		}
	}

	after := from.Time
	before := to.AddDays(1).Time.Add(-time.Second)
	for _, r := range c.recurring {
		rule, err := rrule.NewRRule(withAnchor(r.option, from.Year()))
		if err != nil {
			continue // validated in New
		}
		for _, t := range rule.Between(after, before, true) {
			out = append(out, Occurrence{Date: generic.DateOf(t.UTC()), Name: r.name})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Expand materializes the holidays in [from, to] as plain data. When two
// holidays share a date their names are joined.
func (c *Calendar) Expand(from, to generic.Date) generic.HolidaySet {
	set := make(generic.HolidaySet)
	for _, o := range c.Holidays(from, to) {
		if prev, ok := set[o.Date]; ok && prev != "" {
			set[o.Date] = prev + " / " + o.Name
			continue
		}
		set[o.Date] = o.Name
	}
	return set
}

// Len returns the number of configured holidays.
func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fixed) + len(c.recurring)
}

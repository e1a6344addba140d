package shift

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// Night shifts start at or after 21:00 or before 06:00.
const (
	NightStartHour = 21
	NightEndHour   = 6
)

// =============================================================================
// DURATION
// =============================================================================

// GrossMinutes returns the span from start to end in minutes. An end at or
// before the start means the shift crosses midnight.
func GrossMinutes(start, end generic.ClockTime) int {
	s, e := start.Minutes(), end.Minutes()
	if e <= s {
		e += generic.MinutesPerDay
	}
	return e - s
}

// NetMinutes returns the break-adjusted length of a shift in minutes, never
// negative. Aggregates sum these and convert to hours once.
func NetMinutes(start, end generic.ClockTime, breakMinutes int) int {
	net := GrossMinutes(start, end) - breakMinutes
	if net < 0 {
		return 0
	}
	return net
}

// ComputeShiftHours returns the break-adjusted hours of a shift. The result
// is never negative; a break longer than the shift yields zero.
func ComputeShiftHours(start, end generic.ClockTime, breakMinutes int) decimal.Decimal {
	return generic.MinutesToHours(NetMinutes(start, end, breakMinutes))
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

type Classification struct {
	IsWeekend    bool
	IsNightShift bool
	IsHoliday    bool
}

// Classify derives weekend and night flags from the shift's date and start.
func Classify(date generic.Date, start generic.ClockTime) Classification {
	wd := date.Weekday()
	h := start.Hour()
	return Classification{
		IsWeekend:    wd == time.Saturday || wd == time.Sunday,
		IsNightShift: h >= NightStartHour || h < NightEndHour,
	}
}

// ClassifyWith is Classify plus the holiday flag from cal. A nil calendar
// has no holidays.
func ClassifyWith(date generic.Date, start generic.ClockTime, cal generic.HolidayCalendar) Classification {
	c := Classify(date, start)
	c.IsHoliday = generic.IsHolidayOn(cal, date)
	return c
}

// Classify classifies the instance on its own date and start time.
func (s Instance) Classify(cal generic.HolidayCalendar) Classification {
	return ClassifyWith(s.Date, s.Start, cal)
}

package generic

// =============================================================================
// HOLIDAY CALENDAR - Jurisdiction-specific holidays
// =============================================================================

// HolidayCalendar provides holiday lookup. Implementations are supplied by
// the caller; the engine only reads them.
type HolidayCalendar interface {
	IsHoliday(date Date) bool
}

// NoHolidays is a no-op calendar for when holidays are disabled or unknown.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool { return false }

// HolidaySet is a pre-fetched set of holiday dates with their names. It is
// plain data, so handing it to the projector keeps the projection
// deterministic.
type HolidaySet map[Date]string

func (s HolidaySet) IsHoliday(date Date) bool {
	_, ok := s[date]
	return ok
}

// Name returns the holiday name for date, or "" if it is not a holiday.
func (s HolidaySet) Name(date Date) string {
	return s[date]
}

// IsHolidayOn reports whether date is a holiday, treating a nil calendar as
// having no holidays.
func IsHolidayOn(cal HolidayCalendar, date Date) bool {
	if cal == nil {
		return false
	}
	return cal.IsHoliday(date)
}

package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - A calendar day, always UTC midnight
// =============================================================================

// Date is a calendar day. Shifts are scheduled on dates and carry wall-clock
// times; the engine never needs a time zone because every interval it
// measures is anchored on a Date.
type Date struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &TimeParseError{Input: s, Layout: DateLayout, Err: err}
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddWeeks(n int) Date { return d.AddDays(7 * n) }

// Properties
func (d Date) Year() int              { return d.Time.Year() }
func (d Date) Month() time.Month      { return d.Time.Month() }
func (d Date) Day() int               { return d.Time.Day() }
func (d Date) Weekday() time.Weekday  { return d.Time.Weekday() }
func (d Date) IsWeekend() bool        { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Date) IsSunday() bool         { return d.Weekday() == time.Sunday }
func (d Date) IsZero() bool           { return d.Time.IsZero() }
func (d Date) String() string         { return d.Time.Format(DateLayout) }

// MarshalText writes the date as YYYY-MM-DD, and the zero date as "".
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekStart returns the Monday on or before d.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// At returns the instant at clock time c on this date.
func (d Date) At(c ClockTime) time.Time {
	return d.Time.Add(time.Duration(c) * time.Minute)
}

// =============================================================================
// CLOCK TIME - Wall-clock time of day
// =============================================================================

// ClockTime is a time of day expressed as minutes since midnight, in [0, 1440).
type ClockTime int

const (
	MinutesPerDay           = 24 * 60
	Midnight      ClockTime = 0
)

// NewClock builds a ClockTime from hour and minute.
func NewClock(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &TimeParseError{Input: fmt.Sprintf("%d:%d", hour, minute), Layout: "HH:MM", Err: ErrMalformedTime}
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS". Seconds must be zero-padded and
// are discarded; the engine works in whole minutes.
func ParseClock(s string) (ClockTime, error) {
	t := strings.TrimSpace(s)
	parts := strings.Split(t, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &TimeParseError{Input: s, Layout: "HH:MM", Err: ErrMalformedTime}
	}
	fields := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return 0, &TimeParseError{Input: s, Layout: "HH:MM", Err: ErrMalformedTime}
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, &TimeParseError{Input: s, Layout: "HH:MM", Err: ErrMalformedTime}
		}
		fields[i] = v
	}
	if len(fields) == 3 && (fields[2] < 0 || fields[2] > 59) {
		return 0, &TimeParseError{Input: s, Layout: "HH:MM:SS", Err: ErrMalformedTime}
	}
	c, err := NewClock(fields[0], fields[1])
	if err != nil {
		return 0, &TimeParseError{Input: s, Layout: "HH:MM", Err: ErrMalformedTime}
	}
	return c, nil
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Minutes() int { return int(c) }
func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Valid() bool  { return c >= 0 && c < MinutesPerDay }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText lets ClockTime appear as "HH:MM" in YAML and JSON.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

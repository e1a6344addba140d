package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/generic"
)

// =============================================================================
// CLOCK TIME
// =============================================================================

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    generic.ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"23:59:59", 1439, false},
		{" 07:15 ", 435, false},
		{"8:00", 0, true},
		{"08:0", 0, true},
		{"080:00", 0, true},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:30:60", 0, true},
		{"12:30:5", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := generic.ParseClock(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, generic.ErrMalformedTime)
				var pe *generic.TimeParseError
				assert.ErrorAs(t, err, &pe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTime_Text(t *testing.T) {
	c := generic.MustClock("06:05")
	assert.Equal(t, 6, c.Hour())
	assert.Equal(t, 5, c.Minute())

	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "06:05", string(b))

	var back generic.ClockTime
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, c, back)
	assert.Error(t, back.UnmarshalText([]byte("6h05")))
}

// =============================================================================
// DATE
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2025, time.March, 10), d)

	_, err = generic.ParseDate("10/03/2025")
	assert.ErrorIs(t, err, generic.ErrMalformedTime)
}

func TestDate_WeekStart(t *testing.T) {
	monday := generic.NewDate(2025, time.March, 10)

	tests := []struct {
		name string
		day  generic.Date
	}{
		{"monday", monday},
		{"wednesday", monday.AddDays(2)},
		{"sunday", monday.AddDays(6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, monday, tt.day.WeekStart())
		})
	}

	// The following Monday starts a new week.
	assert.Equal(t, monday.AddWeeks(1), monday.AddDays(7).WeekStart())
}

func TestDate_JSON(t *testing.T) {
	type doc struct {
		Day   generic.Date
		Unset generic.Date
	}

	// GIVEN a document with a set and a zero date
	in := doc{Day: generic.NewDate(2025, time.March, 10)}

	// WHEN encoding and decoding it
	b, err := json.Marshal(in)
	require.NoError(t, err)

	// THEN dates are plain days and survive the round trip
	assert.JSONEq(t, `{"Day": "2025-03-10", "Unset": ""}`, string(b))
	var out doc
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"Day": "March 10"}`), &out))
}

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_Validate(t *testing.T) {
	mon := generic.NewDate(2025, time.March, 10)

	assert.NoError(t, generic.Period{Start: mon, End: mon}.Validate())
	assert.NoError(t, generic.Period{Start: mon, End: mon.AddDays(6)}.Validate())
	assert.ErrorIs(t, generic.Period{Start: mon, End: mon.AddDays(-1)}.Validate(), generic.ErrInvalidPeriod)
}

func TestPeriod_Contains(t *testing.T) {
	week := generic.WeekOf(generic.NewDate(2025, time.March, 12))

	assert.True(t, week.Contains(week.Start))
	assert.True(t, week.Contains(week.End))
	assert.False(t, week.Contains(week.End.AddDays(1)))
	assert.Equal(t, "[2025-03-10, 2025-03-16]", week.String())
}

func TestWeeks(t *testing.T) {
	weeks := generic.Weeks(generic.NewDate(2025, time.March, 12), 2)

	require.Len(t, weeks, 2)
	assert.Equal(t, "[2025-03-10, 2025-03-16]", weeks[0].String())
	assert.Equal(t, "[2025-03-17, 2025-03-23]", weeks[1].String())
	assert.Empty(t, generic.Weeks(generic.NewDate(2025, time.March, 12), 0))
}

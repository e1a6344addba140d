package shift

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/generic"
)

// NightOverlapHours returns how many hours of the shift [start, end) fall
// inside the daily window [windowStart, windowEnd). Either interval may cross
// midnight.
//
// All boundaries are placed on one timeline measured in minutes from
// midnight of the shift's start day. The shift occupies [s, e) with
// e <= s+1440, so it lies within [0, 2880). The window recurs every day, so
// its occurrences starting on the previous day, the shift day and the next
// day are intersected with the shift and summed. Windows are shorter than a
// day, so those occurrences never overlap each other and nothing is counted
// twice.
//
// A window whose start equals its end is empty.
func NightOverlapHours(start, end, windowStart, windowEnd generic.ClockTime) decimal.Decimal {
	return generic.MinutesToHours(OverlapMinutes(start, end, windowStart, windowEnd))
}

// OverlapMinutes is NightOverlapHours in whole minutes.
func OverlapMinutes(start, end, windowStart, windowEnd generic.ClockTime) int {
	if windowStart == windowEnd {
		return 0
	}

	s := start.Minutes()
	e := s + GrossMinutes(start, end)

	ws, we := windowStart.Minutes(), windowEnd.Minutes()
	if we <= ws {
		we += generic.MinutesPerDay
	}

	total := 0
	for _, day := range []int{-generic.MinutesPerDay, 0, generic.MinutesPerDay} {
		total += intersect(s, e, ws+day, we+day)
	}
	return total
}

func intersect(a0, a1, b0, b1 int) int {
	lo := max(a0, b0)
	hi := min(a1, b1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

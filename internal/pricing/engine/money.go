package engine

import (
	"math"
	"time"
)

// RoundHalfAwayFromZero rounds a fractional cent amount to the nearest
// whole cent, with halves moving away from zero (2.5 -> 3, -2.5 -> -3).
func RoundHalfAwayFromZero(value float64) int64 {
	return int64(math.Round(value))
}

// DurationHours converts a booking interval to billable hours: any started
// hour counts as a full hour. The interval must be strictly positive.
func DurationHours(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}

// Tax computes the tax line from a subtotal and a fractional rate
// (0.10 = 10%), rounding half away from zero.
func Tax(subtotalCents int64, rate float64) int64 {
	return RoundHalfAwayFromZero(float64(subtotalCents) * rate)
}

package engine

import (
	"time"

	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
)

// Booking is the engine's view of one reservation, already shifted into
// the parking's timezone. Day, date and time conditions all evaluate
// against the local start instant.
type Booking struct {
	LocalStart    time.Time
	DurationHours int
}

// Matches reports whether every present condition block of the rule holds
// for the booking. Rules carrying no conditions always match.
func Matches(conditions priceruledomain.Conditions, booking Booking) bool {
	if conditions.Time != nil && !matchTime(conditions.Time, booking.LocalStart) {
		return false
	}
	if conditions.Day != nil && !matchDay(conditions.Day, booking.LocalStart) {
		return false
	}
	if conditions.Date != nil && !matchDate(conditions.Date, booking.LocalStart) {
		return false
	}
	if conditions.Duration != nil && !matchDuration(conditions.Duration, booking.DurationHours) {
		return false
	}
	return true
}

// matchTime checks the local start clock against a [start, end) window.
// End before start wraps the window past midnight; start equal to end is a
// degenerate window that matches every instant.
func matchTime(cond *priceruledomain.TimeCondition, localStart time.Time) bool {
	windowStart, err := priceruledomain.ParseClock(cond.StartTime)
	if err != nil {
		return false
	}
	windowEnd, err := priceruledomain.ParseClock(cond.EndTime)
	if err != nil {
		return false
	}
	if windowStart == windowEnd {
		return true
	}

	minute := localStart.Hour()*60 + localStart.Minute()
	if windowStart < windowEnd {
		return minute >= windowStart && minute < windowEnd
	}
	// Overnight window, e.g. 22:00-06:00.
	return minute >= windowStart || minute < windowEnd
}

func matchDay(cond *priceruledomain.DayCondition, localStart time.Time) bool {
	weekday := int(localStart.Weekday())
	for _, day := range cond.DaysOfWeek {
		if day == weekday {
			return true
		}
	}
	return false
}

func matchDate(cond *priceruledomain.DateCondition, localStart time.Time) bool {
	start, err := priceruledomain.ParseDate(cond.StartDate)
	if err != nil {
		return false
	}
	end, err := priceruledomain.ParseDate(cond.EndDate)
	if err != nil {
		return false
	}

	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

func matchDuration(cond *priceruledomain.DurationCondition, durationHours int) bool {
	if durationHours < cond.MinHours {
		return false
	}
	if cond.MaxHours != nil && durationHours > *cond.MaxHours {
		return false
	}
	return true
}

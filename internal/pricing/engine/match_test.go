package engine

import (
	"testing"
	"time"

	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	// 2026-03-04 is a Wednesday.
	return time.Date(2026, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestMatches_EmptyConditions(t *testing.T) {
	assert.True(t, Matches(priceruledomain.Conditions{}, booking(at(10, 0), 3)))
}

func TestMatches_TimeWindow(t *testing.T) {
	cond := priceruledomain.Conditions{
		Time: &priceruledomain.TimeCondition{StartTime: "08:00", EndTime: "12:00"},
	}

	assert.True(t, Matches(cond, booking(at(8, 0), 1)))
	assert.True(t, Matches(cond, booking(at(11, 59), 1)))
	// End is exclusive.
	assert.False(t, Matches(cond, booking(at(12, 0), 1)))
	assert.False(t, Matches(cond, booking(at(7, 59), 1)))
}

func TestMatches_TimeWindowOvernight(t *testing.T) {
	cond := priceruledomain.Conditions{
		Time: &priceruledomain.TimeCondition{StartTime: "22:00", EndTime: "06:00"},
	}

	assert.True(t, Matches(cond, booking(at(23, 30), 1)))
	assert.True(t, Matches(cond, booking(at(0, 0), 1)))
	assert.True(t, Matches(cond, booking(at(5, 59), 1)))
	assert.False(t, Matches(cond, booking(at(6, 0), 1)))
	assert.False(t, Matches(cond, booking(at(12, 0), 1)))
}

func TestMatches_TimeWindowDegenerate(t *testing.T) {
	cond := priceruledomain.Conditions{
		Time: &priceruledomain.TimeCondition{StartTime: "09:00", EndTime: "09:00"},
	}

	assert.True(t, Matches(cond, booking(at(9, 0), 1)))
	assert.True(t, Matches(cond, booking(at(21, 0), 1)))
}

func TestMatches_Day(t *testing.T) {
	cond := priceruledomain.Conditions{
		Day: &priceruledomain.DayCondition{DaysOfWeek: []int{0, 6}},
	}

	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	assert.True(t, Matches(cond, booking(saturday, 1)))
	assert.True(t, Matches(cond, booking(sunday, 1)))
	assert.False(t, Matches(cond, booking(at(10, 0), 1)))
}

func TestMatches_DateRangeInclusive(t *testing.T) {
	cond := priceruledomain.Conditions{
		Date: &priceruledomain.DateCondition{StartDate: "2026-03-01", EndDate: "2026-03-10"},
	}

	assert.True(t, Matches(cond, booking(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 1)))
	assert.True(t, Matches(cond, booking(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), 1)))
	assert.False(t, Matches(cond, booking(time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), 1)))
	assert.False(t, Matches(cond, booking(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), 1)))
}

func TestMatches_DurationUnboundedMax(t *testing.T) {
	cond := priceruledomain.Conditions{
		Duration: &priceruledomain.DurationCondition{MinHours: 24},
	}

	assert.True(t, Matches(cond, booking(at(10, 0), 24)))
	assert.True(t, Matches(cond, booking(at(10, 0), 200)))
	assert.False(t, Matches(cond, booking(at(10, 0), 23)))
}

func TestMatches_AllBlocksMustHold(t *testing.T) {
	cond := priceruledomain.Conditions{
		Time: &priceruledomain.TimeCondition{StartTime: "08:00", EndTime: "18:00"},
		Day:  &priceruledomain.DayCondition{DaysOfWeek: []int{3}},
	}

	// Wednesday inside the window.
	assert.True(t, Matches(cond, booking(at(10, 0), 1)))
	// Wednesday outside the window.
	assert.False(t, Matches(cond, booking(at(19, 0), 1)))
	// Inside the window on a Thursday.
	thursday := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	assert.False(t, Matches(cond, booking(thursday, 1)))
}

func TestMatches_MalformedConditionNeverMatches(t *testing.T) {
	cond := priceruledomain.Conditions{
		Time: &priceruledomain.TimeCondition{StartTime: "25:00", EndTime: "06:00"},
	}
	assert.False(t, Matches(cond, booking(at(10, 0), 1)))

	cond = priceruledomain.Conditions{
		Date: &priceruledomain.DateCondition{StartDate: "bad", EndDate: "2026-03-10"},
	}
	assert.False(t, Matches(cond, booking(at(10, 0), 1)))
}

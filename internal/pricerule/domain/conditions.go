package domain

import (
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// Validate checks every present condition block for well-formedness.
func (c Conditions) Validate() error {
	if c.Time != nil {
		if _, err := ParseClock(c.Time.StartTime); err != nil {
			return ErrInvalidTimeCondition
		}
		if _, err := ParseClock(c.Time.EndTime); err != nil {
			return ErrInvalidTimeCondition
		}
	}
	if c.Day != nil {
		if len(c.Day.DaysOfWeek) == 0 {
			return ErrInvalidDayCondition
		}
		for _, day := range c.Day.DaysOfWeek {
			if day < 0 || day > 6 {
				return ErrInvalidDayCondition
			}
		}
	}
	if c.Date != nil {
		start, err := ParseDate(c.Date.StartDate)
		if err != nil {
			return ErrInvalidDateCondition
		}
		end, err := ParseDate(c.Date.EndDate)
		if err != nil {
			return ErrInvalidDateCondition
		}
		if end.Before(start) {
			return ErrInvalidDateCondition
		}
	}
	if c.Duration != nil {
		if c.Duration.MinHours < 0 {
			return ErrInvalidDurationCondition
		}
		if c.Duration.MaxHours != nil && *c.Duration.MaxHours < c.Duration.MinHours {
			return ErrInvalidDurationCondition
		}
	}
	return nil
}

// ParseClock parses an HH:mm value into minutes since midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

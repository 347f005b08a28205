package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RuleType tags what a rule is about for display purposes. Matching is
// driven by which condition blocks are present, never by this tag, so a
// mislabeled rule still evaluates correctly.
type RuleType string

const (
	RuleTypeTimeBased     RuleType = "TIME_BASED"
	RuleTypeDayBased      RuleType = "DAY_BASED"
	RuleTypeDateBased     RuleType = "DATE_BASED"
	RuleTypeDurationBased RuleType = "DURATION_BASED"
	RuleTypeDiscount      RuleType = "DISCOUNT"
)

type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "PERCENTAGE"
	AdjustmentFixed      AdjustmentType = "FIXED"
)

// PriceRule is a pricing adjustment attached to one parking resource.
//
// AdjustmentValue is percent points for PERCENTAGE rules (15 = +15%,
// -20 = -20%) and minor currency units for FIXED rules (1500 = 15.00).
// Negative values are discounts. Lower Priority applies earlier.
type PriceRule struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ParkingID       snowflake.ID   `json:"parking_id" gorm:"column:parking_id;not null;index"`
	Name            string         `json:"name" gorm:"type:text;not null"`
	Description     string         `json:"description,omitempty" gorm:"type:text"`
	Type            RuleType       `json:"type" gorm:"column:rule_type;type:text;not null"`
	AdjustmentType  AdjustmentType `json:"adjustment_type" gorm:"type:text;not null"`
	AdjustmentValue float64        `json:"adjustment_value" gorm:"not null"`
	Conditions      Conditions     `json:"conditions" gorm:"type:jsonb;serializer:json"`
	Priority        int            `json:"priority" gorm:"not null;default:0"`
	IsActive        bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceRule) TableName() string { return "price_rules" }

// Conditions groups the optional condition blocks. A rule matches a booking
// when every present block is satisfied; a rule with no blocks always
// matches.
type Conditions struct {
	Time     *TimeCondition     `json:"time,omitempty"`
	Day      *DayCondition      `json:"day,omitempty"`
	Date     *DateCondition     `json:"date,omitempty"`
	Duration *DurationCondition `json:"duration,omitempty"`
}

func (c Conditions) Empty() bool {
	return c.Time == nil && c.Day == nil && c.Date == nil && c.Duration == nil
}

// TimeCondition is a wall-clock window in HH:mm. EndTime before StartTime
// means the window wraps past midnight.
type TimeCondition struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DayCondition lists days of week, 0 (Sunday) through 6 (Saturday).
type DayCondition struct {
	DaysOfWeek []int `json:"days_of_week"`
}

// DateCondition is an inclusive calendar date range in YYYY-MM-DD.
type DateCondition struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// DurationCondition bounds the booking length in whole hours. A nil
// MaxHours means unbounded.
type DurationCondition struct {
	MinHours int  `json:"min_hours"`
	MaxHours *int `json:"max_hours,omitempty"`
}

// DeriveType picks the display tag from the populated condition blocks,
// used when a create request does not tag the rule itself.
func (c Conditions) DeriveType() RuleType {
	switch {
	case c.Time != nil:
		return RuleTypeTimeBased
	case c.Day != nil:
		return RuleTypeDayBased
	case c.Date != nil:
		return RuleTypeDateBased
	case c.Duration != nil:
		return RuleTypeDurationBased
	default:
		return RuleTypeDiscount
	}
}

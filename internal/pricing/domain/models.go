package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
)

// AppliedRule records one rule's contribution to a quote. AmountCents is the
// signed delta the rule added to the running subtotal, after rounding and
// after the floor at zero.
type AppliedRule struct {
	RuleID          string                         `json:"rule_id"`
	Name            string                         `json:"name"`
	Type            priceruledomain.RuleType       `json:"type"`
	AdjustmentType  priceruledomain.AdjustmentType `json:"adjustment_type"`
	AdjustmentValue float64                        `json:"adjustment_value"`
	AmountCents     int64                          `json:"amount_cents"`
}

// PriceCalculation is the full breakdown for one booking interval:
// SubtotalCents = BasePriceCents*DurationHours + sum of applied amounts.
type PriceCalculation struct {
	ParkingID      string        `json:"parking_id"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	DurationHours  int           `json:"duration_hours"`
	BasePriceCents int64         `json:"base_price_cents"`
	AppliedRules   []AppliedRule `json:"applied_rules"`
	SubtotalCents  int64         `json:"subtotal_cents"`
	TaxCents       int64         `json:"tax_cents"`
	TotalCents     int64         `json:"total_cents"`
	Currency       string        `json:"currency"`
}

// PriceQuote is a persisted calculation, kept for the historical feed and
// for the suggestion heuristics. IDs are ULIDs so rows sort by creation
// time without a separate column index.
type PriceQuote struct {
	ID             string        `json:"id" gorm:"primaryKey;type:text"`
	ParkingID      snowflake.ID  `json:"parking_id" gorm:"column:parking_id;not null;index"`
	StartTime      time.Time     `json:"start_time" gorm:"not null"`
	EndTime        time.Time     `json:"end_time" gorm:"not null"`
	DurationHours  int           `json:"duration_hours" gorm:"not null"`
	BasePriceCents int64         `json:"base_price_cents" gorm:"not null"`
	SubtotalCents  int64         `json:"subtotal_cents" gorm:"not null"`
	TaxCents       int64         `json:"tax_cents" gorm:"not null"`
	TotalCents     int64         `json:"total_cents" gorm:"not null"`
	Currency       string        `json:"currency" gorm:"type:text;not null"`
	AppliedRules   []AppliedRule `json:"applied_rules" gorm:"type:jsonb;serializer:json"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (PriceQuote) TableName() string { return "price_quotes" }

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const AlgorithmBase = "BASE"

// Factors captures the signals a suggestion was derived from, persisted
// alongside the suggestion so operators can audit the reasoning.
type Factors struct {
	LookbackDays       int     `json:"lookback_days"`
	QuoteCount         int     `json:"quote_count"`
	QuotesPerDay       float64 `json:"quotes_per_day"`
	TargetQuotesPerDay float64 `json:"target_quotes_per_day"`
	DemandRatio        float64 `json:"demand_ratio"`
	AdjustmentPercent  float64 `json:"adjustment_percent"`
}

// PriceSuggestion is a proposed new base price for a parking. It stays
// advisory until Apply copies it onto the parking.
type PriceSuggestion struct {
	ID                  snowflake.ID `json:"id" gorm:"primaryKey"`
	ParkingID           snowflake.ID `json:"parking_id" gorm:"column:parking_id;not null;index"`
	AlgorithmType       string       `json:"algorithm_type" gorm:"type:text;not null"`
	SuggestedPriceCents int64        `json:"suggested_price_cents" gorm:"not null"`
	CurrentPriceCents   int64        `json:"current_price_cents" gorm:"not null"`
	Confidence          float64      `json:"confidence" gorm:"not null"`
	Factors             Factors      `json:"factors" gorm:"type:jsonb;serializer:json"`
	Reasoning           string       `json:"reasoning" gorm:"type:text"`
	ValidFrom           time.Time    `json:"valid_from" gorm:"not null"`
	ValidUntil          time.Time    `json:"valid_until" gorm:"not null"`
	IsApplied           bool         `json:"is_applied" gorm:"not null;default:false"`
	AppliedAt           *time.Time   `json:"applied_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceSuggestion) TableName() string { return "price_suggestions" }

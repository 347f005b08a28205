package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// CalculatePrice resolves the active rules for a parking against one
	// booking interval and persists the resulting quote.
	CalculatePrice(ctx context.Context, req CalculateRequest) (*PriceCalculation, error)
	// PriceForRange quotes without persisting; used for browsing previews.
	PriceForRange(ctx context.Context, req CalculateRequest) (*PriceCalculation, error)
	Historical(ctx context.Context, req HistoricalRequest) (*HistoricalResponse, error)
}

type CalculateRequest struct {
	ParkingID string    `form:"parkingId"`
	StartDate time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
}

type HistoricalRequest struct {
	ParkingID string    `form:"parkingId"`
	Days      int       `form:"days"`
	StartDate time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate   time.Time `form:"endDate" time_format:"2006-01-02"`
}

// HistoricalPoint aggregates the quotes issued on one calendar day in the
// parking's timezone.
type HistoricalPoint struct {
	Date           string  `json:"date"`
	QuoteCount     int     `json:"quote_count"`
	RevenueCents   int64   `json:"revenue_cents"`
	AvgTotalCents  int64   `json:"avg_total_cents"`
	MinTotalCents  int64   `json:"min_total_cents"`
	MaxTotalCents  int64   `json:"max_total_cents"`
	AvgHourlyCents int64   `json:"avg_hourly_cents"`
	AvgDurationHrs float64 `json:"avg_duration_hours"`
}

type HistoricalResponse struct {
	ParkingID string            `json:"parking_id"`
	Currency  string            `json:"currency"`
	Days      int               `json:"days"`
	Points    []HistoricalPoint `json:"points"`
}

var (
	ErrInvalidParking    = errors.New("invalid_parking")
	ErrParkingNotFound   = errors.New("parking_not_found")
	ErrInvalidInterval   = errors.New("invalid_interval")
	ErrInvalidRange      = errors.New("invalid_range")
	ErrNegativeBasePrice = errors.New("negative_base_price")
)

package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Generate runs the pricing heuristic for one parking and persists
	// the resulting suggestion.
	Generate(ctx context.Context, req GenerateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	// Apply copies the suggested price onto the parking and marks the
	// suggestion applied. Expired or already-applied suggestions refuse.
	Apply(ctx context.Context, id string) (*Response, error)
	// RefreshAll regenerates suggestions for every active parking; the
	// scheduler drives this.
	RefreshAll(ctx context.Context) (int, error)
}

type GenerateRequest struct {
	ParkingID string `json:"parking_id"`
}

type ListRequest struct {
	ParkingID   string `form:"parkingId"`
	CurrentOnly bool   `form:"currentOnly"`
}

type Response struct {
	ID                  string     `json:"id"`
	ParkingID           string     `json:"parking_id"`
	AlgorithmType       string     `json:"algorithm_type"`
	SuggestedPriceCents int64      `json:"suggested_price_cents"`
	CurrentPriceCents   int64      `json:"current_price_cents"`
	Confidence          float64    `json:"confidence"`
	Factors             Factors    `json:"factors"`
	Reasoning           string     `json:"reasoning"`
	ValidFrom           time.Time  `json:"valid_from"`
	ValidUntil          time.Time  `json:"valid_until"`
	IsApplied           bool       `json:"is_applied"`
	AppliedAt           *time.Time `json:"applied_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidParking  = errors.New("invalid_parking")
	ErrParkingNotFound = errors.New("parking_not_found")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyApplied  = errors.New("already_applied")
	ErrExpired         = errors.New("expired")
)

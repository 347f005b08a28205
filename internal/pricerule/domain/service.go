package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	ParkingID       string     `json:"parking_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Type            string     `json:"type"`
	AdjustmentType  string     `json:"adjustment_type"`
	AdjustmentValue float64    `json:"adjustment_value"`
	Conditions      Conditions `json:"conditions"`
	Priority        int        `json:"priority"`
	IsActive        *bool      `json:"is_active"`
}

// UpdateRequest carries partial updates; nil fields are left untouched.
type UpdateRequest struct {
	Name            *string     `json:"name"`
	Description     *string     `json:"description"`
	Type            *string     `json:"type"`
	AdjustmentType  *string     `json:"adjustment_type"`
	AdjustmentValue *float64    `json:"adjustment_value"`
	Conditions      *Conditions `json:"conditions"`
	Priority        *int        `json:"priority"`
	IsActive        *bool       `json:"is_active"`
}

type ListRequest struct {
	ParkingID  string `form:"parkingId"`
	ActiveOnly bool   `form:"activeOnly"`
}

type Response struct {
	ID              string     `json:"id"`
	ParkingID       string     `json:"parking_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Type            RuleType   `json:"type"`
	AdjustmentType  AdjustmentType `json:"adjustment_type"`
	AdjustmentValue float64    `json:"adjustment_value"`
	Conditions      Conditions `json:"conditions"`
	Priority        int        `json:"priority"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

var (
	ErrInvalidID                = errors.New("invalid_id")
	ErrInvalidParking           = errors.New("invalid_parking")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidRuleType          = errors.New("invalid_rule_type")
	ErrInvalidAdjustmentType    = errors.New("invalid_adjustment_type")
	ErrInvalidAdjustmentValue   = errors.New("invalid_adjustment_value")
	ErrInvalidTimeCondition     = errors.New("invalid_time_condition")
	ErrInvalidDayCondition      = errors.New("invalid_day_condition")
	ErrInvalidDateCondition     = errors.New("invalid_date_condition")
	ErrInvalidDurationCondition = errors.New("invalid_duration_condition")
	ErrNotFound                 = errors.New("not_found")
)

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
	UpdateBasePrice(ctx context.Context, id string, basePriceCents int64) (*Response, error)
}

type CreateRequest struct {
	OwnerID        string         `json:"owner_id"`
	Title          string         `json:"title"`
	Address        string         `json:"address"`
	Timezone       string         `json:"timezone"`
	BasePriceCents int64          `json:"base_price_cents"`
	Currency       string         `json:"currency"`
	Metadata       map[string]any `json:"metadata"`
}

type ListRequest struct {
	OwnerID string `form:"ownerId"`
}

type Response struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id,omitempty"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Address        string         `json:"address,omitempty"`
	Timezone       string         `json:"timezone"`
	BasePriceCents int64          `json:"base_price_cents"`
	Currency       string         `json:"currency"`
	IsActive       bool           `json:"is_active"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidTitle     = errors.New("invalid_title")
	ErrInvalidTimezone  = errors.New("invalid_timezone")
	ErrInvalidBasePrice = errors.New("invalid_base_price")
	ErrInvalidCurrency  = errors.New("invalid_currency")
	ErrNotFound         = errors.New("not_found")
)

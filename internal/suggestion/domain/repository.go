package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, suggestion *PriceSuggestion) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceSuggestion, error)
	// ListByParking returns suggestions newest first; a zero parkingID
	// lists across all parkings. currentOnly keeps only unapplied
	// suggestions still inside their validity window.
	ListByParking(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, currentOnly bool, now time.Time) ([]PriceSuggestion, error)
	MarkApplied(ctx context.Context, db *gorm.DB, id snowflake.ID, appliedAt time.Time) error
	// DeleteExpiredUnapplied drops unapplied suggestions whose validity
	// ended before the cutoff.
	DeleteExpiredUnapplied(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

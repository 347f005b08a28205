package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *PriceQuote) error
	// ListByParkingSince returns quotes created at or after the cutoff,
	// newest first.
	ListByParkingSince(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, since time.Time) ([]PriceQuote, error)
	// DeleteOlderThan prunes quotes past the retention window and reports
	// how many rows went away.
	DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

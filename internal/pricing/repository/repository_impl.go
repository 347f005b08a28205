package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"gorm.io/gorm"
)

type quoteRepo struct{}

func Provide() pricingdomain.QuoteRepository {
	return &quoteRepo{}
}

func (r *quoteRepo) Insert(ctx context.Context, db *gorm.DB, quote *pricingdomain.PriceQuote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *quoteRepo) ListByParkingSince(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, since time.Time) ([]pricingdomain.PriceQuote, error) {
	var items []pricingdomain.PriceQuote
	err := db.WithContext(ctx).
		Where("parking_id = ? AND created_at >= ?", parkingID, since).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *quoteRepo) DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&pricingdomain.PriceQuote{})
	return result.RowsAffected, result.Error
}

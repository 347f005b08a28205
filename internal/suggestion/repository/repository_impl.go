package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() suggestiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, suggestion *suggestiondomain.PriceSuggestion) error {
	return db.WithContext(ctx).Create(suggestion).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*suggestiondomain.PriceSuggestion, error) {
	var suggestion suggestiondomain.PriceSuggestion
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&suggestion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &suggestion, nil
}

func (r *repo) ListByParking(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, currentOnly bool, now time.Time) ([]suggestiondomain.PriceSuggestion, error) {
	stmt := db.WithContext(ctx).Model(&suggestiondomain.PriceSuggestion{})
	if parkingID != 0 {
		stmt = stmt.Where("parking_id = ?", parkingID)
	}
	if currentOnly {
		stmt = stmt.Where("is_applied = ? AND valid_until > ?", false, now)
	}

	var items []suggestiondomain.PriceSuggestion
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkApplied(ctx context.Context, db *gorm.DB, id snowflake.ID, appliedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&suggestiondomain.PriceSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_applied": true,
			"applied_at": appliedAt,
		}).Error
}

func (r *repo) DeleteExpiredUnapplied(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("is_applied = ? AND valid_until < ?", false, cutoff).
		Delete(&suggestiondomain.PriceSuggestion{})
	return result.RowsAffected, result.Error
}

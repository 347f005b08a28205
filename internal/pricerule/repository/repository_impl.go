package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	"github.com/spotlane/pricing/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() priceruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *priceruledomain.PriceRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*priceruledomain.PriceRule, error) {
	var rule priceruledomain.PriceRule
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f priceruledomain.PriceRule, opts ...option.QueryOption) ([]priceruledomain.PriceRule, error) {
	var items []priceruledomain.PriceRule
	stmt := db.WithContext(ctx).Model(&priceruledomain.PriceRule{})

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	if err := stmt.Where(f).Order("priority ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActiveByParking(ctx context.Context, db *gorm.DB, parkingID snowflake.ID) ([]priceruledomain.PriceRule, error) {
	var items []priceruledomain.PriceRule
	err := db.WithContext(ctx).
		Where("parking_id = ? AND is_active = ?", parkingID, true).
		Order("priority ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *priceruledomain.PriceRule) error {
	// Struct-based Updates so the conditions serializer is honored; Select
	// forces zero values (e.g. is_active=false) through.
	return db.WithContext(ctx).
		Model(&priceruledomain.PriceRule{}).
		Where("id = ?", rule.ID).
		Select("name", "description", "rule_type", "adjustment_type", "adjustment_value",
			"conditions", "priority", "is_active", "updated_at").
		Updates(rule).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&priceruledomain.PriceRule{}).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	"github.com/spotlane/pricing/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() parkingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, parking *parkingdomain.Parking) error {
	return db.WithContext(ctx).Create(parking).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*parkingdomain.Parking, error) {
	var parking parkingdomain.Parking
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&parking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &parking, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f parkingdomain.Parking, opts ...option.QueryOption) ([]parkingdomain.Parking, error) {
	var items []parkingdomain.Parking
	stmt := db.WithContext(ctx).Model(&parkingdomain.Parking{})

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	if err := stmt.Where(f).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateBasePrice(ctx context.Context, db *gorm.DB, parking *parkingdomain.Parking) error {
	return db.WithContext(ctx).
		Model(&parkingdomain.Parking{}).
		Where("id = ?", parking.ID).
		Updates(map[string]interface{}{
			"base_price_cents": parking.BasePriceCents,
			"updated_at":       parking.UpdatedAt,
		}).Error
}

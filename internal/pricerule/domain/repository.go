package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/spotlane/pricing/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *PriceRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceRule, error)
	List(ctx context.Context, db *gorm.DB, f PriceRule, opts ...option.QueryOption) ([]PriceRule, error)
	// ListActiveByParking returns active rules for a parking ordered by
	// ascending priority, with insertion order (snowflake id) breaking ties.
	ListActiveByParking(ctx context.Context, db *gorm.DB, parkingID snowflake.ID) ([]PriceRule, error)
	Update(ctx context.Context, db *gorm.DB, rule *PriceRule) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/spotlane/pricing/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, parking *Parking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Parking, error)
	List(ctx context.Context, db *gorm.DB, f Parking, opts ...option.QueryOption) ([]Parking, error)
	UpdateBasePrice(ctx context.Context, db *gorm.DB, parking *Parking) error
}

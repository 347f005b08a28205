package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Parking is the slice of a marketplace listing this service needs: the
// hourly base price the engine starts from, plus currency and timezone for
// money and condition evaluation.
type Parking struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	OwnerID        snowflake.ID      `json:"owner_id" gorm:"column:owner_id;index"`
	Slug           string            `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Title          string            `json:"title" gorm:"type:text;not null"`
	Address        string            `json:"address" gorm:"type:text"`
	Timezone       string            `json:"timezone" gorm:"type:text;not null;default:UTC"`
	BasePriceCents int64             `json:"base_price_cents" gorm:"not null"`
	Currency       string            `json:"currency" gorm:"type:text;not null"`
	IsActive       bool              `json:"is_active" gorm:"not null;default:true"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Parking) TableName() string { return "parkings" }

// Location resolves the parking's IANA timezone, falling back to UTC.
func (p Parking) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

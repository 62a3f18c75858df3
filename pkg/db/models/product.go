package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/pkg/types"
)

// Product is the catalogue entity that can be added to a cart. Price is a
// fixed-point decimal; currency rounding must never drift through float math.
type Product struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string              `gorm:"column:name;not null"`
	Price    decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	Options  types.OptionsSchema `gorm:"column:options;type:jsonb;serializer:json"`
	Stock    *int                `gorm:"column:stock"`
	IsActive bool                `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shoptools/shoptools-go/pkg/enums"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// Order is the persisted form of a cart, durable across sessions. Its lines
// follow the same contract as session cart lines, so an order can keep being
// edited through the shared cart interface after checkout created it.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionToken    *string               `gorm:"column:session_token"`
	Email           *string               `gorm:"column:email"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'new'"`
	ShippingOptions types.ShippingOptions `gorm:"column:shipping_options;type:jsonb;serializer:json"`
	VoucherCodes    pq.StringArray        `gorm:"column:voucher_codes;type:text[]"`
	ConvertedAt     *time.Time            `gorm:"column:converted_at"`
	Lines           []OrderLine           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Discounts       []Discount            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

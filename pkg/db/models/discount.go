package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount records a voucher application against an order at the moment of
// materialization. The amount is snapshotted so later voucher edits cannot
// change a placed order.
type Discount struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	VoucherCode string          `gorm:"column:voucher_code;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/pkg/enums"
)

// Voucher is a redeemable discount code. Amount is a percentage for
// percentage vouchers, a currency amount for fixed vouchers, and unused for
// free-shipping vouchers.
type Voucher struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string            `gorm:"column:code;not null;uniqueIndex"`
	Kind         enums.VoucherKind `gorm:"column:kind;not null"`
	Amount       decimal.Decimal   `gorm:"column:amount;type:numeric(10,2);not null;default:0"`
	MinimumSpend decimal.Decimal   `gorm:"column:minimum_spend;type:numeric(10,2);not null;default:0"`
	UseLimit     *int              `gorm:"column:use_limit"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

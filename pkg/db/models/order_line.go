package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine is one (item, options, quantity) entry within an order. Options
// holds the canonical sorted-key JSON of the normalized option map, so the
// unique index enforces at most one line per line key.
type OrderLine struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID  uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uniq_order_line_identity"`
	ItemType string    `gorm:"column:item_type;not null;uniqueIndex:uniq_order_line_identity"`
	ItemID   string    `gorm:"column:item_id;not null;uniqueIndex:uniq_order_line_identity"`
	Options  string    `gorm:"column:options;not null;default:'{}';uniqueIndex:uniq_order_line_identity"`
	Quantity int       `gorm:"column:quantity;not null"`
	// Position orders lines written in the same batch, where created_at ties.
	Position int `gorm:"column:position;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

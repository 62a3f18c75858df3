package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/pkg/db/models"
)

// Repository defines persistence operations for orders, their lines and
// their discount snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBySessionToken(ctx context.Context, token string) (*models.Order, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, orderID uuid.UUID) error

	FindLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	FindLine(ctx context.Context, orderID uuid.UUID, itemType, itemID, options string) (*models.OrderLine, error)
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteLines(ctx context.Context, orderID uuid.UUID) error
	DeleteLinesByItem(ctx context.Context, orderID uuid.UUID, itemType, itemID string) error

	FindDiscounts(ctx context.Context, orderID uuid.UUID) ([]models.Discount, error)
	CreateDiscounts(ctx context.Context, discounts []models.Discount) error
	DeleteDiscounts(ctx context.Context, orderID uuid.UUID) error
}

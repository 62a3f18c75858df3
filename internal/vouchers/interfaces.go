package vouchers

import (
	"context"

	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/pkg/db/models"
)

// Repository defines persistence operations for voucher lookup and use
// accounting. Discount rows themselves belong to the orders repository; this
// side only reads them to enforce use limits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Voucher, error)
	CountUses(ctx context.Context, code string) (int64, error)
}

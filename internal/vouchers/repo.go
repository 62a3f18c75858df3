package vouchers

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vouchers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error) {
	if err := r.db.WithContext(ctx).Create(voucher).Error; err != nil {
		return nil, err
	}
	return voucher, nil
}

// FindByCode matches codes case-insensitively; customers type them.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = UPPER(?)", code).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) FindByCodes(ctx context.Context, codes []string) ([]models.Voucher, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	upper := make([]string, 0, len(codes))
	for _, code := range codes {
		upper = append(upper, strings.ToUpper(code))
	}
	var vouchers []models.Voucher
	err := r.db.WithContext(ctx).
		Where("UPPER(code) IN ?", upper).
		Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *repository) CountUses(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("voucher_code = ?", code).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

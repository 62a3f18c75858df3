package catalogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/pkg/db/models"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// ProductType is the type tag products register under.
const ProductType = "catalogue.product"

// ProductRepository exposes persistence operations for catalogue products.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository constructs a product repository bound to the provided DB.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID loads a product row by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, row *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListActive returns the purchasable products, newest first.
func (r *ProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock reduces tracked stock after a sale. Untracked stock (NULL)
// is left alone.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock - ?", quantity)).Error
}

// productItem adapts a product row to the Item capability.
type productItem struct {
	row *models.Product
}

func (p productItem) LineTotal(quantity int, _ types.Options) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return p.row.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

func (p productItem) CartErrors(quantity int, _ types.Options) []string {
	var errs []string
	if !p.row.IsActive {
		errs = append(errs, fmt.Sprintf("%s is no longer available", p.row.Name))
	}
	if p.row.Stock != nil && quantity > *p.row.Stock {
		errs = append(errs, fmt.Sprintf("insufficient stock for %s", p.row.Name))
	}
	return errs
}

func (p productItem) Description() string {
	return p.row.Name
}

func (p productItem) OptionsSchema() types.OptionsSchema {
	return p.row.Options
}

// ProductResolver resolves product references for the item registry.
type ProductResolver struct {
	repo *ProductRepository
}

// NewProductResolver builds a resolver over the given repository.
func NewProductResolver(repo *ProductRepository) *ProductResolver {
	return &ProductResolver{repo: repo}
}

// Resolve implements Resolver. Missing rows map to ErrItemNotFound.
func (r *ProductResolver) Resolve(ctx context.Context, id string) (Item, error) {
	row, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrItemNotFound, id)
		}
		return nil, err
	}
	return productItem{row: row}, nil
}

// RegisterProducts wires the product resolver into a registry.
func RegisterProducts(registry *Registry, repo *ProductRepository) {
	registry.Register(ProductType, NewProductResolver(repo))
}

package checkout

import (
	"context"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/pkg/db/models"
)

type stockDecrementer interface {
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// ProductStockHook returns a purchase hook that draws down tracked product
// stock for every sold line. A failed decrement never unwinds the placed
// order.
func ProductStockHook(repo stockDecrementer) PurchaseHook {
	return func(ctx context.Context, _ *models.Order, line cart.Line) {
		if line.Ref.Type != catalogue.ProductType {
			return
		}
		_ = repo.DecrementStock(ctx, line.Ref.ID, line.Quantity)
	}
}

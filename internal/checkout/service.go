package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/internal/orders"
	"github.com/shoptools/shoptools-go/pkg/db/models"
	"github.com/shoptools/shoptools-go/pkg/enums"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PurchaseHook runs once per materialized line after a successful save, so
// item owners can react to sales (stock adjustment, notifications). Hooks
// run outside the transaction; a slow hook cannot hold locks.
type PurchaseHook func(ctx context.Context, order *models.Order, line cart.Line)

// Service converts carts into persisted orders.
type Service interface {
	// SaveTo replaces the target order's content with the source cart's:
	// lines, shipping options, voucher codes and discount snapshots. The
	// write is transactional; on failure the target is untouched.
	SaveTo(ctx context.Context, source cart.Cart, target *orders.Order) error

	// Checkout finds or creates the order for the session token, materializes
	// the source cart into it and stamps the conversion time.
	Checkout(ctx context.Context, source cart.Cart, input CheckoutInput) (*orders.Order, error)

	// Order wraps a loaded order record with the service's capabilities, for
	// handlers that edit a persisted order through the cart contract.
	Order(record *models.Order) *orders.Order
}

// CheckoutInput carries the customer data bound to the order at conversion.
type CheckoutInput struct {
	SessionToken string
	Email        string
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	registry   *catalogue.Registry

	shipping  cart.ShippingCalculator
	discounts cart.DiscountCalculator
	hook      PurchaseHook
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*service)

// WithShipping attaches the shipping capability given to orders the service
// creates or loads.
func WithShipping(calc cart.ShippingCalculator) ServiceOption {
	return func(s *service) { s.shipping = calc }
}

// WithDiscounts attaches the discount capability given to orders the service
// creates or loads.
func WithDiscounts(calc cart.DiscountCalculator) ServiceOption {
	return func(s *service) { s.discounts = calc }
}

// WithPurchaseHook registers the per-line purchase callback.
func WithPurchaseHook(hook PurchaseHook) ServiceOption {
	return func(s *service) { s.hook = hook }
}

// NewService builds the checkout service.
func NewService(tx txRunner, ordersRepo orders.Repository, registry *catalogue.Registry, opts ...ServiceOption) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if registry == nil {
		return nil, fmt.Errorf("catalogue registry required")
	}
	s := &service{tx: tx, ordersRepo: ordersRepo, registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) SaveTo(ctx context.Context, source cart.Cart, target *orders.Order) error {
	if !cart.IsValid(ctx, source) {
		messages, err := cart.Errors(ctx, source)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not valid for checkout").WithDetails(messages)
	}

	lines, err := source.Lines(ctx)
	if err != nil {
		return err
	}
	shippingOpts, err := source.ShippingOptions(ctx)
	if err != nil {
		return err
	}
	codes, err := source.VoucherCodes(ctx)
	if err != nil {
		return err
	}

	// Discounts are priced against the source cart before the write so the
	// snapshot matches what the customer saw.
	discounts, _, err := cart.CalculateDiscounts(ctx, source, true)
	if err != nil {
		return err
	}

	record := target.Record()
	rows := make([]models.OrderLine, 0, len(lines))
	for i, line := range lines {
		key := line.Key()
		rows = append(rows, models.OrderLine{
			ID:       uuid.New(),
			OrderID:  record.ID,
			ItemType: key.ItemType,
			ItemID:   key.ItemID,
			Options:  key.Options,
			Quantity: line.Quantity,
			Position: i,
		})
	}
	discountRows := make([]models.Discount, 0, len(discounts))
	for _, d := range discounts {
		discountRows = append(discountRows, models.Discount{
			ID:          uuid.New(),
			OrderID:     record.ID,
			VoucherCode: d.Code,
			Amount:      d.Amount,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)
		if err := repo.DeleteLines(ctx, record.ID); err != nil {
			return err
		}
		if err := repo.CreateLines(ctx, rows); err != nil {
			return err
		}
		if err := target.WithTx(tx).SetShippingOptions(ctx, shippingOpts); err != nil {
			return err
		}
		if err := repo.Update(ctx, record.ID, map[string]any{
			"voucher_codes": pq.StringArray(codes),
		}); err != nil {
			return err
		}
		if err := repo.DeleteDiscounts(ctx, record.ID); err != nil {
			return err
		}
		return repo.CreateDiscounts(ctx, discountRows)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "materializing cart")
	}

	record.VoucherCodes = pq.StringArray(codes)

	if s.hook != nil {
		for _, line := range lines {
			s.hook(ctx, record, line)
		}
	}
	return nil
}

func (s *service) Checkout(ctx context.Context, source cart.Cart, input CheckoutInput) (*orders.Order, error) {
	if input.SessionToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session token required")
	}

	record, err := s.ordersRepo.FindBySessionToken(ctx, input.SessionToken)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		token := input.SessionToken
		record, err = s.ordersRepo.Create(ctx, &models.Order{
			ID:           uuid.New(),
			SessionToken: &token,
			Status:       enums.OrderStatusNew,
		})
		if err != nil {
			return nil, err
		}
	}

	target := orders.NewOrder(record, s.ordersRepo, s.registry, s.orderOptions()...)
	if err := s.SaveTo(ctx, source, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{"converted_at": now}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if err := s.ordersRepo.Update(ctx, record.ID, updates); err != nil {
		return nil, err
	}
	record.ConvertedAt = &now
	if input.Email != "" {
		email := input.Email
		record.Email = &email
	}
	return target, nil
}

func (s *service) Order(record *models.Order) *orders.Order {
	return orders.NewOrder(record, s.ordersRepo, s.registry, s.orderOptions()...)
}

func (s *service) orderOptions() []orders.Option {
	opts := make([]orders.Option, 0, 2)
	if s.shipping != nil {
		opts = append(opts, orders.WithShipping(s.shipping))
	}
	if s.discounts != nil {
		opts = append(opts, orders.WithDiscounts(s.discounts))
	}
	return opts
}

package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/pkg/db"
	"github.com/shoptools/shoptools-go/pkg/db/models"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// Order is the persisted cart variant. Every mutation writes through to the
// database immediately; nothing is buffered in memory, so concurrent edits
// of the same order converge on the uniqueness constraint of the line table.
type Order struct {
	record   *models.Order
	repo     Repository
	registry *catalogue.Registry

	shipping  cart.ShippingCalculator
	discounts cart.DiscountCalculator
}

// Option configures optional capabilities at construction.
type Option func(*Order)

// WithShipping attaches a shipping capability.
func WithShipping(calc cart.ShippingCalculator) Option {
	return func(o *Order) { o.shipping = calc }
}

// WithDiscounts attaches a discount capability.
func WithDiscounts(calc cart.DiscountCalculator) Option {
	return func(o *Order) { o.discounts = calc }
}

// NewOrder wraps a loaded order record in the cart contract.
func NewOrder(record *models.Order, repo Repository, registry *catalogue.Registry, opts ...Option) *Order {
	o := &Order{record: record, repo: repo, registry: registry}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Record exposes the underlying row for callers that need order metadata
// (status, email, timestamps) beyond the cart contract.
func (o *Order) Record() *models.Order {
	return o.record
}

// WithTx returns a view of the order whose writes run inside the transaction.
func (o *Order) WithTx(tx *gorm.DB) *Order {
	return &Order{
		record:    o.record,
		repo:      o.repo.WithTx(tx),
		registry:  o.registry,
		shipping:  o.shipping,
		discounts: o.discounts,
	}
}

// UpdateQuantity implements the cart contract with write-through upserts
// keyed on the canonical line identity.
func (o *Order) UpdateQuantity(ctx context.Context, ref catalogue.ItemRef, quantity int, add bool, rawOptions map[string]string) (bool, error) {
	if add && quantity == 0 {
		return false, cart.NoQuantityError()
	}

	removal := !add && quantity <= 0
	item, options, err := cart.ResolveAndNormalize(ctx, o.registry, ref, rawOptions, removal)
	if err != nil {
		return false, err
	}
	if removal && item == nil {
		// The item is gone, so stored option keys cannot be rebuilt from its
		// schema. Purge every line of the item instead of chasing one key.
		return true, o.repo.DeleteLinesByItem(ctx, o.record.ID, ref.Type, ref.ID)
	}

	key := cart.KeyOf(ref, options)
	existing, err := o.repo.FindLine(ctx, o.record.ID, key.ItemType, key.ItemID, key.Options)
	if err != nil {
		return false, err
	}

	newQuantity := quantity
	if add && existing != nil {
		newQuantity += existing.Quantity
	}

	if newQuantity <= 0 {
		if existing == nil {
			return true, nil
		}
		return true, o.repo.DeleteLine(ctx, existing.ID)
	}

	candidate := cart.NewLine(ref, newQuantity, options, item)
	if errs := candidate.Errors(); len(errs) > 0 {
		return false, cart.ValidationRejected(errs)
	}

	if existing != nil {
		return false, o.repo.UpdateLineQuantity(ctx, existing.ID, newQuantity)
	}
	err = o.repo.CreateLines(ctx, []models.OrderLine{{
		ID:       uuid.New(),
		OrderID:  o.record.ID,
		ItemType: key.ItemType,
		ItemID:   key.ItemID,
		Options:  key.Options,
		Quantity: newQuantity,
	}})
	if db.IsUniqueViolation(err, "uniq_order_line_identity") {
		// Lost a concurrent insert race on the same line identity.
		return false, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line already exists")
	}
	return false, err
}

// Lines reads the stored lines in insertion order, resolving each item and
// skipping lines whose item no longer exists.
func (o *Order) Lines(ctx context.Context) ([]cart.Line, error) {
	rows, err := o.repo.FindLines(ctx, o.record.ID)
	if err != nil {
		return nil, err
	}

	out := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		ref := catalogue.ItemRef{Type: row.ItemType, ID: row.ItemID}
		item, err := o.registry.Resolve(ctx, ref)
		if err != nil {
			if catalogue.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		options, err := decodeOptions(row.Options)
		if err != nil {
			return nil, err
		}
		out = append(out, cart.NewLine(ref, row.Quantity, options, item))
	}
	return out, nil
}

// Clear deletes the order record itself. Lines and discounts go with it
// through the cascade.
func (o *Order) Clear(ctx context.Context) error {
	return o.repo.Delete(ctx, o.record.ID)
}

// ShippingOptions returns the stored shipping selection.
func (o *Order) ShippingOptions(context.Context) (types.ShippingOptions, error) {
	return o.record.ShippingOptions, nil
}

// SetShippingOptions persists the shipping selection verbatim.
func (o *Order) SetShippingOptions(ctx context.Context, opts types.ShippingOptions) error {
	cloned := opts.Clone()
	raw, err := json.Marshal(cloned)
	if err != nil {
		return fmt.Errorf("encoding shipping options: %w", err)
	}
	if err := o.repo.Update(ctx, o.record.ID, map[string]any{"shipping_options": string(raw)}); err != nil {
		return err
	}
	o.record.ShippingOptions = cloned
	return nil
}

// VoucherCodes returns the codes stored on the order.
func (o *Order) VoucherCodes(context.Context) ([]string, error) {
	return append([]string(nil), o.record.VoucherCodes...), nil
}

// SetVoucherCodes persists a replacement set of voucher codes.
func (o *Order) SetVoucherCodes(ctx context.Context, codes []string) error {
	stored := pq.StringArray(append([]string(nil), codes...))
	if err := o.repo.Update(ctx, o.record.ID, map[string]any{"voucher_codes": stored}); err != nil {
		return err
	}
	o.record.VoucherCodes = stored
	return nil
}

// Shipping returns the attached shipping capability, nil when absent.
func (o *Order) Shipping() cart.ShippingCalculator {
	return o.shipping
}

// Discounts returns the attached discount capability, nil when absent.
func (o *Order) Discounts() cart.DiscountCalculator {
	return o.discounts
}

func decodeOptions(canonical string) (types.Options, error) {
	if canonical == "" || canonical == "{}" {
		return types.Options{}, nil
	}
	var out types.Options
	if err := json.Unmarshal([]byte(canonical), &out); err != nil {
		return nil, fmt.Errorf("decoding line options: %w", err)
	}
	return out, nil
}

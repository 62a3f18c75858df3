package cart

import (
	"context"

	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// SessionCart is the ephemeral cart variant: it lives in memory for the
// duration of a request and round-trips through the session store between
// requests. It is scoped to one visitor session and never shared.
type SessionCart struct {
	token    string
	registry *catalogue.Registry

	shipping  ShippingCalculator
	discounts DiscountCalculator

	lines           []sessionLine
	shippingOptions types.ShippingOptions
	voucherCodes    []string
}

type sessionLine struct {
	Ref      catalogue.ItemRef `json:"ref"`
	Quantity int               `json:"quantity"`
	Options  types.Options     `json:"options"`
}

// SessionCartOption configures optional capabilities at construction.
type SessionCartOption func(*SessionCart)

// WithShipping attaches a shipping capability.
func WithShipping(calc ShippingCalculator) SessionCartOption {
	return func(c *SessionCart) { c.shipping = calc }
}

// WithDiscounts attaches a discount capability.
func WithDiscounts(calc DiscountCalculator) SessionCartOption {
	return func(c *SessionCart) { c.discounts = calc }
}

// NewSessionCart builds an empty session cart for the given session token.
func NewSessionCart(token string, registry *catalogue.Registry, opts ...SessionCartOption) *SessionCart {
	c := &SessionCart{token: token, registry: registry}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the session token identifying this cart.
func (c *SessionCart) Token() string {
	return c.token
}

// UpdateQuantity implements the Cart contract over the in-memory line list.
func (c *SessionCart) UpdateQuantity(ctx context.Context, ref catalogue.ItemRef, quantity int, add bool, rawOptions map[string]string) (bool, error) {
	if add && quantity == 0 {
		return false, NoQuantityError()
	}

	removal := !add && quantity <= 0
	item, options, err := ResolveAndNormalize(ctx, c.registry, ref, rawOptions, removal)
	if err != nil {
		return false, err
	}
	if removal && item == nil {
		// The item is gone, so stored option keys cannot be rebuilt from its
		// schema. Purge every line of the item instead of chasing one key.
		kept := c.lines[:0]
		for _, stored := range c.lines {
			if stored.Ref != ref {
				kept = append(kept, stored)
			}
		}
		c.lines = kept
		return true, nil
	}

	key := KeyOf(ref, options)
	idx := c.indexOf(key)

	newQuantity := quantity
	if add && idx >= 0 {
		newQuantity += c.lines[idx].Quantity
	}

	if newQuantity <= 0 {
		if idx >= 0 {
			c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		}
		return true, nil
	}

	candidate := NewLine(ref, newQuantity, options, item)
	if errs := candidate.Errors(); len(errs) > 0 {
		return false, ValidationRejected(errs)
	}

	if idx >= 0 {
		c.lines[idx].Quantity = newQuantity
	} else {
		c.lines = append(c.lines, sessionLine{Ref: ref, Quantity: newQuantity, Options: options})
	}
	return false, nil
}

// Lines resolves every stored line, preserving insertion order and skipping
// lines whose item no longer exists.
func (c *SessionCart) Lines(ctx context.Context) ([]Line, error) {
	out := make([]Line, 0, len(c.lines))
	for _, stored := range c.lines {
		item, err := c.registry.Resolve(ctx, stored.Ref)
		if err != nil {
			if catalogue.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, NewLine(stored.Ref, stored.Quantity, stored.Options, item))
	}
	return out, nil
}

// Clear drops all cart state. The session itself survives; only the cart
// content is discarded.
func (c *SessionCart) Clear(context.Context) error {
	c.lines = nil
	c.shippingOptions = nil
	c.voucherCodes = nil
	return nil
}

// ShippingOptions returns the stored shipping selection.
func (c *SessionCart) ShippingOptions(context.Context) (types.ShippingOptions, error) {
	return c.shippingOptions, nil
}

// SetShippingOptions stores the shipping selection verbatim.
func (c *SessionCart) SetShippingOptions(_ context.Context, opts types.ShippingOptions) error {
	c.shippingOptions = opts.Clone()
	return nil
}

// VoucherCodes returns the codes attached to the session.
func (c *SessionCart) VoucherCodes(context.Context) ([]string, error) {
	return append([]string(nil), c.voucherCodes...), nil
}

// SetVoucherCodes replaces the attached voucher codes.
func (c *SessionCart) SetVoucherCodes(codes []string) {
	c.voucherCodes = append([]string(nil), codes...)
}

// Shipping returns the attached shipping capability, nil when absent.
func (c *SessionCart) Shipping() ShippingCalculator {
	return c.shipping
}

// Discounts returns the attached discount capability, nil when absent.
func (c *SessionCart) Discounts() DiscountCalculator {
	return c.discounts
}

func (c *SessionCart) indexOf(key LineKey) int {
	for i, stored := range c.lines {
		if KeyOf(stored.Ref, stored.Options) == key {
			return i
		}
	}
	return -1
}

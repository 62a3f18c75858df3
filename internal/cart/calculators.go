package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// ShippingCalculator is the pluggable shipping capability a cart consults for
// delivery cost and shipping-related validation. Carts built without one
// ship for zero and report no shipping errors.
type ShippingCalculator interface {
	// Calculate returns a non-negative delivery cost for the cart.
	Calculate(ctx context.Context, c Cart) decimal.Decimal

	// Errors returns shipping-related validation messages for the cart.
	Errors(ctx context.Context, c Cart) []string
}

// Discount is one voucher application produced by a discount calculator.
type Discount struct {
	Code   string
	Amount decimal.Decimal
}

// DiscountCalculator is the pluggable voucher capability. Absence means zero
// discount, never an error.
type DiscountCalculator interface {
	// CalculateDiscounts resolves the voucher codes against the cart and
	// returns the applicable discounts plus the first invalid code, if any.
	// includeShipping controls whether free-shipping vouchers count.
	CalculateDiscounts(ctx context.Context, c Cart, codes []string, includeShipping bool) ([]Discount, string, error)
}

package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/internal/catalogue"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// Cart is the shared contract for session carts and persisted orders: one
// uniform interface to mutate, query and price a set of lines, whether the
// backing store is ephemeral or relational.
//
// Implementations provide storage-specific primitives; the derived
// operations (Add, Remove, Count, Subtotal, Total, Errors, IsValid,
// Serialize) are package functions over the contract so both variants
// behave identically.
type Cart interface {
	// UpdateQuantity sets or adjusts the quantity for the line identified by
	// the reference and normalized options. When add is true the quantity is
	// a delta, otherwise an absolute value. A resulting quantity <= 0
	// deletes the line (deleted=true); an invalid line rejects the entire
	// update with a validation error carrying the message list.
	UpdateQuantity(ctx context.Context, ref catalogue.ItemRef, quantity int, add bool, rawOptions map[string]string) (deleted bool, err error)

	// Lines returns the current lines in stable order, excluding lines whose
	// item no longer resolves. Each call re-reads the backing store.
	Lines(ctx context.Context) ([]Line, error)

	// Clear removes all cart state. For a persisted order this deletes the
	// order record itself.
	Clear(ctx context.Context) error

	// ShippingOptions returns the shipping selection payload, nil when unset.
	ShippingOptions(ctx context.Context) (types.ShippingOptions, error)

	// SetShippingOptions stores the shipping selection verbatim. Validation
	// happens in the shipping module before the payload reaches the cart.
	SetShippingOptions(ctx context.Context, opts types.ShippingOptions) error

	// VoucherCodes returns the voucher codes attached to the cart.
	VoucherCodes(ctx context.Context) ([]string, error)

	// Shipping returns the attached shipping capability, nil when absent.
	Shipping() ShippingCalculator

	// Discounts returns the attached discount capability, nil when absent.
	Discounts() DiscountCalculator
}

// Renderer optionally produces an HTML snippet of the cart for the
// serialized payload. The engine never renders; the presentation layer may.
type Renderer interface {
	Render(ctx context.Context, c Cart) (string, error)
}

// NoQuantityError rejects additive updates that carry no delta.
func NoQuantityError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "no quantity specified")
}

// ValidationRejected wraps line validation messages into the error every cart
// variant returns when an update would produce an invalid line.
func ValidationRejected(details []string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "item cannot be added").WithDetails(details)
}

// Add merges quantity into the line for the given reference and options,
// creating it when absent.
func Add(ctx context.Context, c Cart, ref catalogue.ItemRef, quantity int, rawOptions map[string]string) error {
	_, err := c.UpdateQuantity(ctx, ref, quantity, true, rawOptions)
	return err
}

// Remove deletes the line for the given reference and options, a no-op when
// it does not exist.
func Remove(ctx context.Context, c Cart, ref catalogue.ItemRef, rawOptions map[string]string) error {
	_, err := c.UpdateQuantity(ctx, ref, 0, false, rawOptions)
	return err
}

// Count sums the quantities of all valid lines.
func Count(ctx context.Context, c Cart) (int, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total, nil
}

// Subtotal sums the line totals as a decimal.
func Subtotal(ctx context.Context, c Cart) (decimal.Decimal, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Total())
	}
	return sum, nil
}

// ShippingCost consults the attached shipping capability, zero when absent.
func ShippingCost(ctx context.Context, c Cart) decimal.Decimal {
	if calc := c.Shipping(); calc != nil {
		return calc.Calculate(ctx, c)
	}
	return decimal.Zero
}

// ShippingErrors consults the attached shipping capability, empty when absent.
func ShippingErrors(ctx context.Context, c Cart) []string {
	if calc := c.Shipping(); calc != nil {
		return calc.Errors(ctx, c)
	}
	return nil
}

// CalculateDiscounts resolves the cart's voucher codes through the attached
// discount capability. Absence of the capability yields no discounts and no
// invalid code.
func CalculateDiscounts(ctx context.Context, c Cart, includeShipping bool) ([]Discount, string, error) {
	calc := c.Discounts()
	if calc == nil {
		return nil, "", nil
	}
	codes, err := c.VoucherCodes(ctx)
	if err != nil {
		return nil, "", err
	}
	return calc.CalculateDiscounts(ctx, c, codes, includeShipping)
}

// TotalDiscount sums the discount amounts for the cart's voucher codes.
func TotalDiscount(ctx context.Context, c Cart) decimal.Decimal {
	discounts, _, err := CalculateDiscounts(ctx, c, true)
	if err != nil {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, d := range discounts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// Total is subtotal plus shipping cost minus total discount.
func Total(ctx context.Context, c Cart) (decimal.Decimal, error) {
	subtotal, err := Subtotal(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Add(ShippingCost(ctx, c)).Sub(TotalDiscount(ctx, c)), nil
}

// Errors aggregates line errors and shipping errors into one message list.
// Read operations never abort on these; they are data for the caller.
func Errors(ctx context.Context, c Cart) ([]string, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return nil, err
	}
	var all []string
	for _, line := range lines {
		all = append(all, line.Errors()...)
	}
	all = append(all, ShippingErrors(ctx, c)...)
	return all, nil
}

// IsValid reports whether the cart can be checked out: at least one unit and
// zero aggregated errors. An empty cart is never valid, even without errors.
func IsValid(ctx context.Context, c Cart) bool {
	count, err := Count(ctx, c)
	if err != nil || count == 0 {
		return false
	}
	errs, err := Errors(ctx, c)
	if err != nil {
		return false
	}
	return len(errs) == 0
}

// Serialize projects the cart into its JSON payload. Numeric fields become
// floats at this boundary only. renderer may be nil.
func Serialize(ctx context.Context, c Cart, renderer Renderer) (*types.CartPayload, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return nil, err
	}

	payload := &types.CartPayload{
		Count: 0,
		Lines: make([]types.LinePayload, 0, len(lines)),
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		payload.Count += line.Quantity
		payload.Lines = append(payload.Lines, line.Serialize())
		subtotal = subtotal.Add(line.Total())
	}

	shippingOpts, err := c.ShippingOptions(ctx)
	if err != nil {
		return nil, err
	}
	payload.ShippingOptions = shippingOpts.Clone()

	sub := subtotal.InexactFloat64()
	payload.Subtotal = &sub
	total := subtotal.Add(ShippingCost(ctx, c)).Sub(TotalDiscount(ctx, c)).InexactFloat64()
	payload.Total = &total

	if renderer != nil {
		snippet, err := renderer.Render(ctx, c)
		if err != nil {
			return nil, err
		}
		payload.HTMLSnippet = snippet
	}
	return payload, nil
}

// ResolveAndNormalize loads the referenced item and normalizes the raw
// options against its schema. For a pure removal the line key must still be
// computable when the item is gone, so absence is tolerated there; any other
// update of a missing item is rejected.
func ResolveAndNormalize(ctx context.Context, registry *catalogue.Registry, ref catalogue.ItemRef, rawOptions map[string]string, removal bool) (catalogue.Item, types.Options, error) {
	item, err := registry.Resolve(ctx, ref)
	if err != nil {
		if !catalogue.IsNotFound(err) {
			return nil, nil, err
		}
		if !removal {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, Normalize(nil, rawOptions), nil
	}
	return item, Normalize(item.OptionsSchema(), rawOptions), nil
}

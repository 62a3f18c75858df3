package shipping

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/pkg/config"
)

// regionOption is the shipping-options key the calculator reads.
const regionOption = "region"

// FlatRate is the reference shipping calculator: a base rate plus an
// optional per-item rate, waived entirely above an optional free-shipping
// threshold. The destination region must be one of the configured regions.
type FlatRate struct {
	baseRate      decimal.Decimal
	perItemRate   decimal.Decimal
	freeThreshold *decimal.Decimal
	regions       map[string]struct{}
}

// NewFlatRate parses the configured rates once at startup.
func NewFlatRate(cfg config.ShippingConfig) (*FlatRate, error) {
	base, err := decimal.NewFromString(cfg.BaseRate)
	if err != nil {
		return nil, fmt.Errorf("parsing shipping base rate %q: %w", cfg.BaseRate, err)
	}
	perItem, err := decimal.NewFromString(cfg.PerItemRate)
	if err != nil {
		return nil, fmt.Errorf("parsing shipping per-item rate %q: %w", cfg.PerItemRate, err)
	}

	fr := &FlatRate{
		baseRate:    base,
		perItemRate: perItem,
		regions:     make(map[string]struct{}, len(cfg.Regions)),
	}
	if cfg.FreeThreshold != "" {
		threshold, err := decimal.NewFromString(cfg.FreeThreshold)
		if err != nil {
			return nil, fmt.Errorf("parsing shipping free threshold %q: %w", cfg.FreeThreshold, err)
		}
		fr.freeThreshold = &threshold
	}
	for _, region := range cfg.Regions {
		fr.regions[region] = struct{}{}
	}
	return fr, nil
}

// Calculate returns base plus per-item cost, or zero for an empty cart and
// for carts whose subtotal reaches the free threshold.
func (f *FlatRate) Calculate(ctx context.Context, c cart.Cart) decimal.Decimal {
	count, err := cart.Count(ctx, c)
	if err != nil || count == 0 {
		return decimal.Zero
	}

	if f.freeThreshold != nil {
		subtotal, err := cart.Subtotal(ctx, c)
		if err != nil || subtotal.GreaterThanOrEqual(*f.freeThreshold) {
			return decimal.Zero
		}
	}

	return f.baseRate.Add(f.perItemRate.Mul(decimal.NewFromInt(int64(count))))
}

// Errors validates the shipping selection: a region must be chosen and must
// be one of the configured regions.
func (f *FlatRate) Errors(ctx context.Context, c cart.Cart) []string {
	opts, err := c.ShippingOptions(ctx)
	if err != nil {
		return []string{"shipping options unavailable"}
	}

	region, ok := opts[regionOption]
	if !ok || region == "" {
		return []string{"no shipping region selected"}
	}
	if _, known := f.regions[region]; !known {
		return []string{fmt.Sprintf("shipping region %q is not supported", region)}
	}
	return nil
}

package vouchers

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/pkg/db/models"
	"github.com/shoptools/shoptools-go/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Service resolves voucher codes into concrete discounts for a cart. It
// implements the discount capability every cart variant can carry.
type Service interface {
	cart.DiscountCalculator
}

type service struct {
	repo Repository
}

// NewService wires the voucher service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("vouchers: repository is required")
	}
	return &service{repo: repo}, nil
}

// CalculateDiscounts resolves the codes in their given order against the
// cart. Percentage and fixed vouchers draw down the remaining subtotal so
// stacked vouchers can never exceed it; a free-shipping voucher refunds the
// shipping cost when includeShipping is set. The first code that does not
// resolve to an applicable voucher is reported as invalid, and calculation
// continues with the rest.
func (s *service) CalculateDiscounts(ctx context.Context, c cart.Cart, codes []string, includeShipping bool) ([]cart.Discount, string, error) {
	cleaned := cleanCodes(codes)
	if len(cleaned) == 0 {
		return nil, "", nil
	}

	found, err := s.repo.FindByCodes(ctx, cleaned)
	if err != nil {
		return nil, "", err
	}
	byCode := make(map[string]models.Voucher, len(found))
	for _, voucher := range found {
		byCode[strings.ToUpper(voucher.Code)] = voucher
	}

	subtotal, err := cart.Subtotal(ctx, c)
	if err != nil {
		return nil, "", err
	}

	var (
		discounts []cart.Discount
		invalid   string
		remaining = subtotal
	)
	for _, code := range cleaned {
		voucher, ok := byCode[code]
		if !ok {
			invalid = firstInvalid(invalid, code)
			continue
		}

		usable, err := s.usable(ctx, voucher)
		if err != nil {
			return nil, "", err
		}
		if !usable || subtotal.LessThan(voucher.MinimumSpend) {
			invalid = firstInvalid(invalid, code)
			continue
		}

		amount := decimal.Zero
		switch voucher.Kind {
		case enums.VoucherKindPercentage:
			amount = subtotal.Mul(voucher.Amount).Div(oneHundred).Round(2)
		case enums.VoucherKindFixed:
			amount = voucher.Amount
		case enums.VoucherKindFreeShipping:
			if includeShipping {
				amount = cart.ShippingCost(ctx, c)
			}
		}

		if voucher.Kind != enums.VoucherKindFreeShipping {
			if amount.GreaterThan(remaining) {
				amount = remaining
			}
			remaining = remaining.Sub(amount)
		}
		if amount.IsPositive() {
			discounts = append(discounts, cart.Discount{Code: voucher.Code, Amount: amount})
		}
	}
	return discounts, invalid, nil
}

func (s *service) usable(ctx context.Context, voucher models.Voucher) (bool, error) {
	if voucher.UseLimit == nil {
		return true, nil
	}
	uses, err := s.repo.CountUses(ctx, voucher.Code)
	if err != nil {
		return false, err
	}
	return uses < int64(*voucher.UseLimit), nil
}

func cleanCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func firstInvalid(current, code string) string {
	if current != "" {
		return current
	}
	return code
}

package enums

import "fmt"

// VoucherKind distinguishes how a voucher's amount is applied.
type VoucherKind string

const (
	VoucherKindPercentage   VoucherKind = "percentage"
	VoucherKindFixed        VoucherKind = "fixed"
	VoucherKindFreeShipping VoucherKind = "free_shipping"
)

var validVoucherKinds = []VoucherKind{
	VoucherKindPercentage,
	VoucherKindFixed,
	VoucherKindFreeShipping,
}

// String implements fmt.Stringer.
func (k VoucherKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known VoucherKind.
func (k VoucherKind) IsValid() bool {
	for _, candidate := range validVoucherKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseVoucherKind converts raw input into a VoucherKind.
func ParseVoucherKind(value string) (VoucherKind, error) {
	for _, candidate := range validVoucherKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher kind %q", value)
}

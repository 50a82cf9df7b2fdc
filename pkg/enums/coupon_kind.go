package enums

import "fmt"

// CouponKind distinguishes how a coupon's value is applied to a cart.
type CouponKind string

const (
	CouponKindPercentage   CouponKind = "percentage"
	CouponKindFixed        CouponKind = "fixed"
	CouponKindFreeShipping CouponKind = "free_shipping"
)

var validCouponKinds = []CouponKind{
	CouponKindPercentage,
	CouponKindFixed,
	CouponKindFreeShipping,
}

// String implements fmt.Stringer.
func (c CouponKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponKind.
func (c CouponKind) IsValid() bool {
	for _, candidate := range validCouponKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponKind converts raw input into a CouponKind.
func ParseCouponKind(value string) (CouponKind, error) {
	for _, candidate := range validCouponKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon kind %q", value)
}

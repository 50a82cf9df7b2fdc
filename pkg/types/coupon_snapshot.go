package types

import (
	"github.com/countryharvest/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CouponSnapshot freezes the applied coupon's terms on the cart so later
// recomputations do not depend on the live coupon row.
type CouponSnapshot struct {
	Code           string           `json:"code"`
	Kind           enums.CouponKind `json:"kind"`
	Value          decimal.Decimal  `json:"value"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
}

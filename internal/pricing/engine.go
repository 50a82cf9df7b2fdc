package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	"github.com/countryharvest/storefront-backend/pkg/money"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Totals is the derived monetary state of a cart. Total always equals
// round2(subtotal + tax + shipping - discount).
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums unit price times quantity over the purchasable lines.
// Saved-for-later items never contribute.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.SavedForLater {
			continue
		}
		sum = sum.Add(item.LineTotal())
	}
	return money.Round2(sum)
}

// Discount computes the amount a coupon snapshot takes off, clamped so it
// never exceeds the subtotal.
func Discount(coupon *types.CouponSnapshot, subtotal, shipping decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch coupon.Kind {
	case enums.CouponKindPercentage:
		amount = money.Percent(subtotal, coupon.Value)
		if coupon.MaxDiscount != nil {
			amount = money.Min(amount, *coupon.MaxDiscount)
		}
	case enums.CouponKindFixed:
		amount = money.Min(coupon.Value, subtotal)
	case enums.CouponKindFreeShipping:
		amount = money.Min(shipping, coupon.Value)
	default:
		return decimal.Zero
	}

	return money.Round2(money.Min(amount, subtotal))
}

// Compute derives all totals for the given lines, coupon and rates.
func Compute(items []models.CartItem, coupon *types.CouponSnapshot, taxRate, shippingCost decimal.Decimal) Totals {
	subtotal := Subtotal(items)

	// an empty cart carries no tax or shipping
	if subtotal.IsZero() {
		return Totals{
			Subtotal: decimal.Zero,
			Tax:      decimal.Zero,
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	tax := money.Round2(subtotal.Mul(taxRate))
	shipping := money.Round2(shippingCost)
	discount := Discount(coupon, subtotal, shipping)
	total := money.Round2(subtotal.Add(tax).Add(shipping).Sub(discount))

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

// Recalculate refreshes the derived fields on the cart in place, including
// the discount amount recorded on the coupon snapshot.
func Recalculate(cart *models.Cart, shippingCost decimal.Decimal) {
	totals := Compute(cart.Items, cart.Coupon, cart.TaxRate, shippingCost)
	cart.Subtotal = totals.Subtotal
	cart.Tax = totals.Tax
	cart.Shipping = totals.Shipping
	cart.Discount = totals.Discount
	cart.Total = totals.Total
	if cart.Coupon != nil {
		cart.Coupon.DiscountAmount = totals.Discount
	}
}

// SnapshotCoupon freezes a coupon row into the form stored on the cart.
func SnapshotCoupon(coupon *models.Coupon, subtotal, shipping decimal.Decimal) *types.CouponSnapshot {
	snapshot := &types.CouponSnapshot{
		Code:        coupon.Code,
		Kind:        coupon.Kind,
		Value:       coupon.Value,
		MaxDiscount: coupon.MaxDiscount,
	}
	snapshot.DiscountAmount = Discount(snapshot, subtotal, shipping)
	return snapshot
}

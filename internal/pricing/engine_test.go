package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	"github.com/countryharvest/storefront-backend/pkg/money"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(unitPrice string, qty int) models.CartItem {
	return models.CartItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  qty,
		UnitPrice: d(unitPrice),
	}
}

func TestSubtotalSkipsSavedForLater(t *testing.T) {
	t.Parallel()

	saved := item("99.99", 1)
	saved.SavedForLater = true
	items := []models.CartItem{item("25.00", 2), saved}

	if got := Subtotal(items); !got.Equal(d("50.00")) {
		t.Fatalf("expected 50.00, got %s", got)
	}
}

func TestComputePercentageCoupon(t *testing.T) {
	t.Parallel()

	// subtotal=50.00, tax 10% => 5.00, shipping 5.99, 10% coupon => 5.00 off
	maxDiscount := d("100")
	coupon := &types.CouponSnapshot{
		Code:        "WELCOME10",
		Kind:        enums.CouponKindPercentage,
		Value:       d("10"),
		MaxDiscount: &maxDiscount,
	}
	totals := Compute([]models.CartItem{item("25.00", 2)}, coupon, d("0.10"), d("5.99"))

	if !totals.Subtotal.Equal(d("50.00")) {
		t.Fatalf("subtotal: %s", totals.Subtotal)
	}
	if !totals.Tax.Equal(d("5.00")) {
		t.Fatalf("tax: %s", totals.Tax)
	}
	if !totals.Discount.Equal(d("5.00")) {
		t.Fatalf("discount: %s", totals.Discount)
	}
	if !totals.Total.Equal(d("55.99")) {
		t.Fatalf("total: %s", totals.Total)
	}
}

func TestDiscountKinds(t *testing.T) {
	t.Parallel()

	subtotal := d("80.00")
	shipping := d("12.99")
	cap := d("5.00")

	tests := []struct {
		name   string
		coupon types.CouponSnapshot
		want   string
	}{
		{
			name:   "percentage capped by max discount",
			coupon: types.CouponSnapshot{Kind: enums.CouponKindPercentage, Value: d("25"), MaxDiscount: &cap},
			want:   "5.00",
		},
		{
			name:   "fixed clamped to subtotal",
			coupon: types.CouponSnapshot{Kind: enums.CouponKindFixed, Value: d("200.00")},
			want:   "80.00",
		},
		{
			name:   "fixed below subtotal",
			coupon: types.CouponSnapshot{Kind: enums.CouponKindFixed, Value: d("15.00")},
			want:   "15.00",
		},
		{
			name:   "free shipping bounded by value",
			coupon: types.CouponSnapshot{Kind: enums.CouponKindFreeShipping, Value: d("10.00")},
			want:   "10.00",
		},
		{
			name:   "free shipping bounded by shipping cost",
			coupon: types.CouponSnapshot{Kind: enums.CouponKindFreeShipping, Value: d("50.00")},
			want:   "12.99",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Discount(&tc.coupon, subtotal, shipping)
			if !got.Equal(d(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestComputeEmptyCartZeroesEverything(t *testing.T) {
	t.Parallel()

	coupon := &types.CouponSnapshot{Kind: enums.CouponKindFixed, Value: d("10.00")}
	totals := Compute(nil, coupon, d("0.10"), d("5.99"))

	for name, v := range map[string]decimal.Decimal{
		"subtotal": totals.Subtotal,
		"tax":      totals.Tax,
		"shipping": totals.Shipping,
		"discount": totals.Discount,
		"total":    totals.Total,
	} {
		if !v.IsZero() {
			t.Fatalf("expected %s to be zero, got %s", name, v)
		}
	}
}

func TestTotalsIdentityUnderMutationSequences(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{TaxRate: d("0.10")}
	shipping := d("5.99")

	steps := []func(){
		func() { cart.Items = append(cart.Items, item("25.00", 2)) },
		func() { cart.Items = append(cart.Items, item("3.33", 3)) },
		func() {
			cart.Coupon = &types.CouponSnapshot{Kind: enums.CouponKindPercentage, Value: d("20")}
		},
		func() { cart.Items[0].Quantity = 5 },
		func() { cart.Items = cart.Items[1:] },
		func() { cart.Coupon = nil },
	}

	for i, step := range steps {
		step()
		Recalculate(cart, shipping)

		want := money.Round2(cart.Subtotal.Add(cart.Tax).Add(cart.Shipping).Sub(cart.Discount))
		if !cart.Total.Equal(want) {
			t.Fatalf("step %d: total %s != identity %s", i, cart.Total, want)
		}
		if cart.Discount.GreaterThan(cart.Subtotal) {
			t.Fatalf("step %d: discount %s exceeds subtotal %s", i, cart.Discount, cart.Subtotal)
		}
	}
}

func TestSnapshotCouponRecordsDiscount(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		Code:  "FLAT15",
		Kind:  enums.CouponKindFixed,
		Value: d("15.00"),
	}
	snapshot := SnapshotCoupon(coupon, d("60.00"), d("5.99"))
	if snapshot.Code != "FLAT15" {
		t.Fatalf("code: %s", snapshot.Code)
	}
	if !snapshot.DiscountAmount.Equal(d("15.00")) {
		t.Fatalf("discount amount: %s", snapshot.DiscountAmount)
	}
}

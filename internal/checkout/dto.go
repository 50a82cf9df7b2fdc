package checkout

import (
	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Input carries everything the storefront submits on the place-order form.
// BillingAddress is optional and defaults to the shipping address.
type Input struct {
	GuestEmail       string         `json:"guest_email,omitempty" validate:"omitempty,email"`
	ShippingAddress  types.Address  `json:"shipping_address" validate:"required"`
	BillingAddress   *types.Address `json:"billing_address,omitempty"`
	PaymentMethod    string         `json:"payment_method" validate:"required"`
	ShippingMethodID string         `json:"shipping_method_id" validate:"required"`
}

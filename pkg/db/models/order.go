package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/enums"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Order is the immutable record created from a cart at checkout. Items and
// monetary fields never change after creation; only status, tracking and
// delivery estimates may be updated, each change appended to StatusHistory.
type Order struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string     `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"user_id,omitempty"`
	GuestEmail  *string    `gorm:"column:guest_email" json:"guest_email,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	ShippingAddress types.Address        `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shipping_address"`
	BillingAddress  types.Address        `gorm:"column:billing_address;type:jsonb;serializer:json" json:"billing_address"`
	PaymentInfo     types.PaymentInfo    `gorm:"column:payment_info;type:jsonb;serializer:json" json:"payment_info"`
	ShippingMethod  types.ShippingMethod `gorm:"column:shipping_method;type:jsonb;serializer:json" json:"shipping_method"`

	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	Shipping   decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null" json:"shipping"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	CouponCode *string         `gorm:"column:coupon_code" json:"coupon_code,omitempty"`

	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'" json:"status"`
	StatusHistory types.StatusHistory `gorm:"column:status_history;type:jsonb;serializer:json" json:"status_history"`

	TrackingNumber        *string    `gorm:"column:tracking_number" json:"tracking_number,omitempty"`
	Carrier               *string    `gorm:"column:carrier" json:"carrier,omitempty"`
	EstimatedDeliveryDate *time.Time `gorm:"column:estimated_delivery_date" json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time `gorm:"column:actual_delivery_date" json:"actual_delivery_date,omitempty"`
	Notes                 *string    `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// RecipientEmail returns the address confirmation mail goes to, if any.
func (o *Order) RecipientEmail() string {
	if o.GuestEmail != nil {
		return *o.GuestEmail
	}
	return ""
}

package types

import "github.com/shopspring/decimal"

// ShippingMethod is the delivery option snapshotted onto a cart or order.
type ShippingMethod struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDays     int             `json:"estimated_days"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product/variant line in a cart. UnitPrice is snapshotted
// at add time; stock is always re-validated against the live catalog.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID        uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index" json:"cart_id"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VariantID     *uuid.UUID      `gorm:"column:variant_id;type:uuid" json:"variant_id,omitempty"`
	Quantity      int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	DisplayName   string          `gorm:"column:display_name;not null" json:"display_name"`
	ImageRef      string          `gorm:"column:image_ref" json:"image_ref"`
	SavedForLater bool            `gorm:"column:saved_for_later;not null;default:false" json:"saved_for_later"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// SameLine reports whether the item references the same product/variant pair.
func (i CartItem) SameLine(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == nil && variantID == nil
	}
	return *i.VariantID == *variantID
}

// LineTotal is unit price times quantity, before cart-level adjustments.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

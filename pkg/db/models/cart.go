package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Cart is the mutable pre-purchase aggregate for one owner. Exactly one of
// UserID and SessionID is set. All monetary columns are derived by the
// pricing engine; handlers never write them directly.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id,omitempty"`
	SessionID *string    `gorm:"column:session_id;uniqueIndex" json:"session_id,omitempty"`

	Items  []CartItem            `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Coupon *types.CouponSnapshot `gorm:"column:coupon;type:jsonb;serializer:json" json:"coupon,omitempty"`

	Subtotal decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null;default:0" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0" json:"tax"`
	Shipping decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null;default:0" json:"shipping"`
	Discount decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	Total    decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0" json:"total"`

	TaxRate decimal.Decimal `gorm:"column:tax_rate;type:numeric(6,5);not null;default:0" json:"tax_rate"`

	// Version guards read-modify-write cycles; saves carry WHERE version = ?.
	Version   int       `gorm:"column:version;not null;default:0" json:"version"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ActiveItems returns the items that count toward totals and checkout.
func (c *Cart) ActiveItems() []CartItem {
	active := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if !item.SavedForLater {
			active = append(active, item)
		}
	}
	return active
}

// SavedItems returns the saved-for-later rows retained across checkout.
func (c *Cart) SavedItems() []CartItem {
	saved := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.SavedForLater {
			saved = append(saved, item)
		}
	}
	return saved
}

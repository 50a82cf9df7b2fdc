package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/enums"
)

// Product is a sellable catalog entry. Stock lives directly on the row and
// is only ever changed through conditional updates.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string              `gorm:"column:name;not null" json:"name"`
	Slug           string              `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description    string              `gorm:"column:description" json:"description"`
	BasePrice      decimal.Decimal     `gorm:"column:base_price;type:numeric(12,2);not null" json:"base_price"`
	SalePrice      *decimal.Decimal    `gorm:"column:sale_price;type:numeric(12,2)" json:"sale_price,omitempty"`
	Status         enums.ProductStatus `gorm:"column:status;not null;default:'draft'" json:"status"`
	StockQuantity  int                 `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	AllowBackorder bool                `gorm:"column:allow_backorder;not null;default:false" json:"allow_backorder"`
	DefaultImage   string              `gorm:"column:default_image" json:"default_image"`
	Variants       []ProductVariant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// EffectivePrice prefers the sale price when one is set.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant carries its own price and stock counter.
type ProductVariant struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Name          string           `gorm:"column:name;not null" json:"name"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	SalePrice     *decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)" json:"sale_price,omitempty"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	Image         string           `gorm:"column:image" json:"image"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// EffectivePrice prefers the sale price when one is set.
func (v *ProductVariant) EffectivePrice() decimal.Decimal {
	if v.SalePrice != nil {
		return *v.SalePrice
	}
	return v.Price
}

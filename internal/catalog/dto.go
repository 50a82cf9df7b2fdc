package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
)

// Listing is the resolved sellable view of a product or variant. Cart and
// checkout code works against listings, never against raw product rows.
type Listing struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	DisplayName    string
	UnitPrice      decimal.Decimal
	StockQuantity  int
	AllowBackorder bool
	ImageRef       string
}

// ProductList is one page of published products plus the next cursor.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateProductInput carries the admin-facing fields for a new product.
type CreateProductInput struct {
	Name           string           `json:"name" validate:"required"`
	Slug           string           `json:"slug" validate:"required"`
	Description    string           `json:"description"`
	BasePrice      decimal.Decimal  `json:"base_price" validate:"required"`
	SalePrice      *decimal.Decimal `json:"sale_price,omitempty"`
	StockQuantity  int              `json:"stock_quantity" validate:"gte=0"`
	AllowBackorder bool             `json:"allow_backorder"`
	DefaultImage   string           `json:"default_image"`
	Publish        bool             `json:"publish"`
}

// UpdateProductInput carries optional admin updates; nil fields are untouched.
type UpdateProductInput struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	BasePrice     *decimal.Decimal `json:"base_price,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	Status        *string          `json:"status,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	DefaultImage  *string          `json:"default_image,omitempty"`
}

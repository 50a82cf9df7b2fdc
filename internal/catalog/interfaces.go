package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListPublished(ctx context.Context, params pagination.Params) (*ProductList, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) (bool, error)
}

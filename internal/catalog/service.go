package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads for the storefront plus admin product management.
type Service interface {
	Resolve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*Listing, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListPublished(ctx context.Context, params pagination.Params) (*ProductList, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve loads the sellable listing behind a product/variant reference. Only
// published products resolve; an unknown variant id is rejected even when the
// product itself exists.
func (s *service) Resolve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*Listing, error) {
	return Resolve(ctx, s.repo, productID, variantID)
}

// Resolve is the repository-level lookup behind Service.Resolve, exposed so
// checkout can run the same resolution against a transaction-bound repository.
func Resolve(ctx context.Context, repo Repository, productID uuid.UUID, variantID *uuid.UUID) (*Listing, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithReason(pkgerrors.ReasonProductNotFound).
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q is no longer available", product.Name)).
			WithReason(pkgerrors.ReasonProductUnpublished).
			WithDetails(map[string]any{
				"product_id": product.ID.String(),
				"name":       product.Name,
			})
	}

	listing := &Listing{
		ProductID:      product.ID,
		DisplayName:    product.Name,
		UnitPrice:      product.EffectivePrice(),
		StockQuantity:  product.StockQuantity,
		AllowBackorder: product.AllowBackorder,
		ImageRef:       product.DefaultImage,
	}

	if variantID == nil {
		return listing, nil
	}

	variant := findVariant(product.Variants, *variantID)
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q has no such variant", product.Name)).
			WithReason(pkgerrors.ReasonVariantNotFound).
			WithDetails(map[string]any{
				"product_id": product.ID.String(),
				"name":       product.Name,
				"variant_id": variantID.String(),
			})
	}

	listing.VariantID = &variant.ID
	listing.DisplayName = product.Name + " - " + variant.Name
	listing.UnitPrice = variant.EffectivePrice()
	listing.StockQuantity = variant.StockQuantity
	if variant.Image != "" {
		listing.ImageRef = variant.Image
	}
	return listing, nil
}

func findVariant(variants []models.ProductVariant, id uuid.UUID) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

// EnsureStock verifies the requested quantity can be fulfilled from the listing.
func EnsureStock(listing *Listing, qty int) error {
	if listing.AllowBackorder {
		return nil
	}
	if qty > listing.StockQuantity {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithReason(pkgerrors.ReasonInsufficientStock).
			WithDetails(map[string]any{
				"product_id": listing.ProductID.String(),
				"name":       listing.DisplayName,
				"requested":  qty,
				"available":  listing.StockQuantity,
			})
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithReason(pkgerrors.ReasonProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithReason(pkgerrors.ReasonProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by slug")
	}
	return product, nil
}

func (s *service) ListPublished(ctx context.Context, params pagination.Params) (*ProductList, error) {
	list, err := s.repo.ListPublished(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" || input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	status := enums.ProductStatusDraft
	if input.Publish {
		status = enums.ProductStatusPublished
	}
	product := &models.Product{
		Name:           input.Name,
		Slug:           input.Slug,
		Description:    input.Description,
		BasePrice:      input.BasePrice,
		SalePrice:      input.SalePrice,
		Status:         status,
		StockQuantity:  input.StockQuantity,
		AllowBackorder: input.AllowBackorder,
		DefaultImage:   input.DefaultImage,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
		}
		updates["base_price"] = *input.BasePrice
	}
	if input.SalePrice != nil {
		updates["sale_price"] = *input.SalePrice
	}
	if input.Status != nil {
		status, err := enums.ParseProductStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
		}
		updates["status"] = status
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
		}
		updates["stock_quantity"] = *input.StockQuantity
	}
	if input.DefaultImage != nil {
		updates["default_image"] = *input.DefaultImage
	}

	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, productID)
}

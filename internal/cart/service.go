package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/internal/catalog"
	"github.com/countryharvest/storefront-backend/internal/coupons"
	"github.com/countryharvest/storefront-backend/internal/pricing"
	"github.com/countryharvest/storefront-backend/internal/shipping"
	"github.com/countryharvest/storefront-backend/internal/tax"
	"github.com/countryharvest/storefront-backend/pkg/db/models"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

// Service exposes the cart aggregate operations. Every mutation recomputes
// totals before persisting, so callers never observe an inconsistent cart.
type Service interface {
	GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*models.Cart, error)
	UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, input UpdateItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, owner Owner) (*models.Cart, error)
	ApplyCoupon(ctx context.Context, owner Owner, code string) (*models.Cart, error)
	RemoveCoupon(ctx context.Context, owner Owner) (*models.Cart, error)
	MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo     Repository
	catalog  catalog.Service
	coupons  coupons.Service
	tax      tax.Service
	shipping shipping.Service
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalogSvc catalog.Service, couponSvc coupons.Service, taxSvc tax.Service, shippingSvc shipping.Service, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	if taxSvc == nil {
		return nil, fmt.Errorf("tax service required")
	}
	if shippingSvc == nil {
		return nil, fmt.Errorf("shipping service required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &service{
		repo:     repo,
		catalog:  catalogSvc,
		coupons:  couponSvc,
		tax:      taxSvc,
		shipping: shippingSvc,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (s *service) GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	cart, err := s.find(ctx, owner)
	if err == nil {
		return s.expireIfStale(ctx, cart)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	cart = &models.Cart{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		TaxRate:   s.tax.DefaultRate(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	created, err := s.repo.Create(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) find(ctx context.Context, owner Owner) (*models.Cart, error) {
	if owner.UserID != nil && *owner.UserID != uuid.Nil {
		return s.repo.FindByUser(ctx, *owner.UserID)
	}
	return s.repo.FindBySession(ctx, *owner.SessionID)
}

// expireIfStale lazily resets a cart whose TTL elapsed, keeping the row and
// its owner binding but dropping items, coupon and totals.
func (s *service) expireIfStale(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ExpiresAt.After(s.now()) {
		return cart, nil
	}
	cart.Items = nil
	cart.Coupon = nil
	cart.ExpiresAt = s.now().Add(s.ttl)
	pricing.Recalculate(cart, s.shippingCost(cart))
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*models.Cart, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithReason(pkgerrors.ReasonInvalidQuantity)
	}

	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	listing, err := s.catalog.Resolve(ctx, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}

	// merge with an existing purchasable line for the same product/variant
	merged := false
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.SavedForLater || !item.SameLine(input.ProductID, input.VariantID) {
			continue
		}
		newQty := item.Quantity + input.Quantity
		if err := catalog.EnsureStock(listing, newQty); err != nil {
			return nil, err
		}
		item.Quantity = newQty
		item.UnitPrice = listing.UnitPrice
		item.DisplayName = listing.DisplayName
		item.ImageRef = listing.ImageRef
		merged = true
		break
	}

	if !merged {
		if err := catalog.EnsureStock(listing, input.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, models.CartItem{
			ID:          uuid.New(),
			CartID:      cart.ID,
			ProductID:   input.ProductID,
			VariantID:   input.VariantID,
			Quantity:    input.Quantity,
			UnitPrice:   listing.UnitPrice,
			DisplayName: listing.DisplayName,
			ImageRef:    listing.ImageRef,
			CreatedAt:   s.now(),
		})
	}

	return s.persist(ctx, cart)
}

func (s *service) UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, input UpdateItemInput) (*models.Cart, error) {
	if input.Quantity == nil && input.SavedForLater == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	item := findItem(cart, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
			WithReason(pkgerrors.ReasonItemNotFound)
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive; remove the item instead").
				WithReason(pkgerrors.ReasonInvalidQuantity)
		}
		listing, err := s.catalog.Resolve(ctx, item.ProductID, item.VariantID)
		if err != nil {
			return nil, err
		}
		if err := catalog.EnsureStock(listing, *input.Quantity); err != nil {
			return nil, err
		}
		item.Quantity = *input.Quantity
		item.UnitPrice = listing.UnitPrice
	}

	if input.SavedForLater != nil && *input.SavedForLater != item.SavedForLater {
		if !*input.SavedForLater {
			// moving back into the purchasable list re-checks stock
			listing, err := s.catalog.Resolve(ctx, item.ProductID, item.VariantID)
			if err != nil {
				return nil, err
			}
			if err := catalog.EnsureStock(listing, item.Quantity); err != nil {
				return nil, err
			}
		}
		item.SavedForLater = *input.SavedForLater
	}

	return s.persist(ctx, cart)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
			WithReason(pkgerrors.ReasonItemNotFound)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return s.persist(ctx, cart)
}

func (s *service) Clear(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.Items = nil
	cart.Coupon = nil
	return s.persist(ctx, cart)
}

func (s *service) ApplyCoupon(ctx context.Context, owner Owner, code string) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(cart.Items)
	coupon, err := s.coupons.Validate(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}

	cart.Coupon = pricing.SnapshotCoupon(coupon, subtotal, s.shippingCost(cart))
	return s.persist(ctx, cart)
}

// RemoveCoupon is idempotent: removing when none is applied succeeds without
// touching the stored cart.
func (s *service) RemoveCoupon(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.Coupon == nil {
		return cart, nil
	}
	cart.Coupon = nil
	return s.persist(ctx, cart)
}

// MergeSessionCart adopts an anonymous session cart into the user's cart at
// login. Matching lines merge their quantities; the session cart is deleted.
func (s *service) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) (*models.Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	sessionCart, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.GetOrCreate(ctx, UserOwner(userID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
	}

	userCart, err := s.GetOrCreate(ctx, UserOwner(userID))
	if err != nil {
		return nil, err
	}

	for _, incoming := range sessionCart.Items {
		merged := false
		for i := range userCart.Items {
			existing := &userCart.Items[i]
			if existing.SavedForLater != incoming.SavedForLater {
				continue
			}
			if !existing.SameLine(incoming.ProductID, incoming.VariantID) {
				continue
			}
			existing.Quantity += incoming.Quantity
			merged = true
			break
		}
		if !merged {
			adopted := incoming
			adopted.ID = uuid.New()
			adopted.CartID = userCart.ID
			userCart.Items = append(userCart.Items, adopted)
		}
	}

	if userCart.Coupon == nil {
		userCart.Coupon = sessionCart.Coupon
	}

	result, err := s.persist(ctx, userCart)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sessionCart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session cart")
	}
	return result, nil
}

func (s *service) shippingCost(cart *models.Cart) decimal.Decimal {
	return s.shipping.DefaultCost(pricing.Subtotal(cart.Items))
}

func (s *service) persist(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ExpiresAt = s.now().Add(s.ttl)
	pricing.Recalculate(cart, s.shippingCost(cart))
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, cart *models.Cart) error {
	if err := s.repo.Save(ctx, cart); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was modified concurrently, retry the operation").
				WithReason(pkgerrors.ReasonCartModified)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func findItem(cart *models.Cart, itemID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i]
		}
	}
	return nil
}

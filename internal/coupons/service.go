package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

// Service validates coupon codes against a cart subtotal and exposes the
// admin management surface.
type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error)
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CreateCouponInput carries the admin-facing fields for a new coupon.
type CreateCouponInput struct {
	Code           string           `json:"code" validate:"required"`
	Kind           string           `json:"kind" validate:"required"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at" validate:"required"`
	UsageLimit     int              `json:"usage_limit" validate:"gt=0"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NormalizeCode is the canonical form codes are stored and looked up in.
// Case and surrounding whitespace are properties of user input, not of the
// coupon itself.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewService builds a coupon service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Validate runs the full eligibility chain for a code. Checks run in a fixed
// order so the caller always sees the most specific failure: existence,
// active flag, expiry, usage limit, then minimum order amount.
func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
				WithReason(pkgerrors.ReasonCouponNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if !coupon.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon is not active").
			WithReason(pkgerrors.ReasonCouponInactive)
	}
	if s.now().After(coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon has expired").
			WithReason(pkgerrors.ReasonCouponExpired)
	}
	if coupon.UsageCount >= coupon.UsageLimit {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached").
			WithReason(pkgerrors.ReasonCouponUsageLimitReached)
	}
	if subtotal.LessThan(coupon.MinOrderAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order does not meet coupon minimum").
			WithReason(pkgerrors.ReasonMinimumOrderNotMet).
			WithDetails(map[string]any{
				"min_order_amount": coupon.MinOrderAmount.String(),
				"subtotal":         subtotal.String(),
			})
	}
	return coupon, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	kind, err := enums.ParseCouponKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon kind")
	}
	if NormalizeCode(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if input.UsageLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	if input.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value cannot be negative")
	}
	if kind == enums.CouponKindPercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}

	coupon := &models.Coupon{
		Code:           NormalizeCode(input.Code),
		Kind:           kind,
		Value:          input.Value,
		MinOrderAmount: input.MinOrderAmount,
		MaxDiscount:    input.MaxDiscount,
		ExpiresAt:      input.ExpiresAt,
		UsageLimit:     input.UsageLimit,
		Active:         true,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
				WithReason(pkgerrors.ReasonCouponNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
	}
	return nil
}

package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/countryharvest/storefront-backend/pkg/db/models"
	"github.com/countryharvest/storefront-backend/pkg/enums"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

type stubCouponsRepo struct {
	byCode map[string]*models.Coupon
}

func newStubCouponsRepo() *stubCouponsRepo {
	return &stubCouponsRepo{byCode: make(map[string]*models.Coupon)}
}

func (s *stubCouponsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCouponsRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	s.byCode[coupon.Code] = coupon
	return coupon, nil
}

func (s *stubCouponsRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, ok := s.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return coupon, nil
}

func (s *stubCouponsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, coupon := range s.byCode {
		if coupon.ID == id {
			return coupon, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponsRepo) List(ctx context.Context) ([]models.Coupon, error) {
	out := make([]models.Coupon, 0, len(s.byCode))
	for _, coupon := range s.byCode {
		out = append(out, *coupon)
	}
	return out, nil
}

func (s *stubCouponsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCouponsRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	coupon, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if coupon.UsageCount >= coupon.UsageLimit {
		return false, nil
	}
	coupon.UsageCount++
	return true, nil
}

func validCoupon() *models.Coupon {
	return &models.Coupon{
		ID:         uuid.New(),
		Code:       "HARVEST10",
		Kind:       enums.CouponKindPercentage,
		Value:      decimal.RequireFromString("10"),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		UsageLimit: 5,
		Active:     true,
	}
}

func newTestService(t *testing.T, repo Repository, now time.Time) *service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	if !now.IsZero() {
		impl.now = func() time.Time { return now }
	}
	return impl
}

func TestValidateHappyPath(t *testing.T) {
	t.Parallel()

	repo := newStubCouponsRepo()
	coupon := validCoupon()
	repo.byCode[coupon.Code] = coupon

	svc := newTestService(t, repo, time.Time{})
	got, err := svc.Validate(context.Background(), "  harvest10 ", decimal.RequireFromString("50.00"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.ID != coupon.ID {
		t.Fatal("expected the stored coupon back")
	}
}

func TestValidateFailureOrdering(t *testing.T) {
	t.Parallel()

	subtotal := decimal.RequireFromString("50.00")

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		reason pkgerrors.Reason
	}{
		{
			name:   "inactive",
			mutate: func(c *models.Coupon) { c.Active = false },
			reason: pkgerrors.ReasonCouponInactive,
		},
		{
			name:   "expired",
			mutate: func(c *models.Coupon) { c.ExpiresAt = time.Now().Add(-time.Hour) },
			reason: pkgerrors.ReasonCouponExpired,
		},
		{
			name:   "usage limit",
			mutate: func(c *models.Coupon) { c.UsageCount = c.UsageLimit },
			reason: pkgerrors.ReasonCouponUsageLimitReached,
		},
		{
			name:   "min order",
			mutate: func(c *models.Coupon) { c.MinOrderAmount = decimal.RequireFromString("100.00") },
			reason: pkgerrors.ReasonMinimumOrderNotMet,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newStubCouponsRepo()
			coupon := validCoupon()
			tc.mutate(coupon)
			repo.byCode[coupon.Code] = coupon

			svc := newTestService(t, repo, time.Time{})
			_, err := svc.Validate(context.Background(), coupon.Code, subtotal)
			if !pkgerrors.HasReason(err, tc.reason) {
				t.Fatalf("expected reason %s, got %v", tc.reason, err)
			}
		})
	}
}

func TestValidateUnknownCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCouponsRepo(), time.Time{})
	_, err := svc.Validate(context.Background(), "NOPE", decimal.Zero)
	if !pkgerrors.HasReason(err, pkgerrors.ReasonCouponNotFound) {
		t.Fatalf("expected coupon not found, got %v", err)
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	t.Parallel()

	repo := newStubCouponsRepo()
	coupon := validCoupon()
	repo.byCode[coupon.Code] = coupon

	// exactly at expiry the coupon is still valid
	svc := newTestService(t, repo, coupon.ExpiresAt)
	if _, err := svc.Validate(context.Background(), coupon.Code, decimal.RequireFromString("50.00")); err != nil {
		t.Fatalf("coupon at expiry instant should validate: %v", err)
	}

	svc = newTestService(t, repo, coupon.ExpiresAt.Add(time.Second))
	_, err := svc.Validate(context.Background(), coupon.Code, decimal.RequireFromString("50.00"))
	if !pkgerrors.HasReason(err, pkgerrors.ReasonCouponExpired) {
		t.Fatalf("expected expired reason, got %v", err)
	}
}

func TestCreateRejectsBadPercentage(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCouponsRepo(), time.Time{})
	_, err := svc.Create(context.Background(), CreateCouponInput{
		Code:       "TOOBIG",
		Kind:       "percentage",
		Value:      decimal.RequireFromString("150"),
		ExpiresAt:  time.Now().Add(time.Hour),
		UsageLimit: 1,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateMinimumOrderBoundary(t *testing.T) {
	t.Parallel()

	repo := newStubCouponsRepo()
	coupon := validCoupon()
	coupon.MinOrderAmount = decimal.RequireFromString("50.00")
	repo.byCode[coupon.Code] = coupon

	svc := newTestService(t, repo, time.Time{})

	// A subtotal exactly at the minimum qualifies.
	if _, err := svc.Validate(context.Background(), coupon.Code, decimal.RequireFromString("50.00")); err != nil {
		t.Fatalf("subtotal at minimum should qualify: %v", err)
	}

	// One cent below does not.
	_, err := svc.Validate(context.Background(), coupon.Code, decimal.RequireFromString("49.99"))
	if !pkgerrors.HasReason(err, pkgerrors.ReasonMinimumOrderNotMet) {
		t.Fatalf("expected minimum order failure, got %v", err)
	}
}

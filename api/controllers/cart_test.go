package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/countryharvest/storefront-backend/api/middleware"
	"github.com/countryharvest/storefront-backend/internal/cart"
	"github.com/countryharvest/storefront-backend/pkg/db/models"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

type stubCartService struct {
	cart *models.Cart
	err  error

	addInput cart.AddItemInput
}

func (s *stubCartService) GetOrCreate(ctx context.Context, owner cart.Owner) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner cart.Owner, input cart.AddItemInput) (*models.Cart, error) {
	s.addInput = input
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, owner cart.Owner, itemID uuid.UUID, input cart.UpdateItemInput) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cart.Owner, itemID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner cart.Owner) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, owner cart.Owner, code string) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveCoupon(ctx context.Context, owner cart.Owner) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func requestWithUser(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(r.Context(), uuid.NewString())
	return r.WithContext(ctx)
}

func TestCartFetchReturnsCart(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{cart: &models.Cart{ID: uuid.New()}}
	w := httptest.NewRecorder()
	CartFetch(svc, nil)(w, requestWithUser(http.MethodGet, "/api/v1/cart", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestCartFetchWithoutIdentity(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{cart: &models.Cart{}}
	w := httptest.NewRecorder()
	CartFetch(svc, nil)(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCartAddItemDecodesBody(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{cart: &models.Cart{}}
	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	w := httptest.NewRecorder()
	CartAddItem(svc, nil)(w, requestWithUser(http.MethodPost, "/api/v1/cart/items", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.addInput.ProductID != productID || svc.addInput.Quantity != 3 {
		t.Fatalf("input not forwarded: %+v", svc.addInput)
	}
}

func TestCartAddItemRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{cart: &models.Cart{}}
	w := httptest.NewRecorder()
	CartAddItem(svc, nil)(w, requestWithUser(http.MethodPost, "/api/v1/cart/items", `{"quantity":}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCartAddItemMapsDomainError(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{
		err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithReason(pkgerrors.ReasonInsufficientStock),
	}
	body := `{"product_id":"` + uuid.NewString() + `","quantity":3}`
	w := httptest.NewRecorder()
	CartAddItem(svc, nil)(w, requestWithUser(http.MethodPost, "/api/v1/cart/items", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Reason != string(pkgerrors.ReasonInsufficientStock) {
		t.Fatalf("reason: %s", envelope.Error.Reason)
	}
}

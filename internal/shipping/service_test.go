package shipping

import (
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMethodsListsAllOptions(t *testing.T) {
	t.Parallel()

	svc, err := NewService(d("100.00"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	methods := svc.Methods(d("50.00"))
	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}
	if !methods[0].Price.Equal(d("5.99")) {
		t.Fatalf("standard price below threshold: %s", methods[0].Price)
	}
}

func TestStandardShippingFreeAboveThreshold(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(d("100.00"))

	method, err := svc.Quote(MethodStandard, d("100.00"))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !method.Price.IsZero() {
		t.Fatalf("expected free standard shipping at threshold, got %s", method.Price)
	}

	express, err := svc.Quote(MethodExpress, d("500.00"))
	if err != nil {
		t.Fatalf("quote express: %v", err)
	}
	if !express.Price.Equal(d("12.99")) {
		t.Fatalf("express is never free, got %s", express.Price)
	}
}

func TestQuoteUnknownMethod(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(d("100.00"))
	_, err := svc.Quote("drone", d("10.00"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestZeroThresholdDisablesFreeShipping(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(decimal.Zero)
	method, err := svc.Quote(MethodStandard, d("10000.00"))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !method.Price.Equal(d("5.99")) {
		t.Fatalf("threshold of zero should disable free shipping, got %s", method.Price)
	}
}

package shipping

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Method identifiers accepted at checkout.
const (
	MethodStandard  = "standard"
	MethodExpress   = "express"
	MethodOvernight = "overnight"
)

// Service quotes shipping methods and costs for an order amount. Standard
// shipping drops to zero once the subtotal crosses the free threshold.
type Service interface {
	Methods(subtotal decimal.Decimal) []types.ShippingMethod
	Quote(methodID string, subtotal decimal.Decimal) (*types.ShippingMethod, error)
	DefaultCost(subtotal decimal.Decimal) decimal.Decimal
}

type methodSpec struct {
	id            string
	name          string
	description   string
	price         string
	estimatedDays int
}

var methodSpecs = []methodSpec{
	{MethodStandard, "Standard Shipping", "Delivered in 5-7 business days", "5.99", 7},
	{MethodExpress, "Express Shipping", "Delivered in 2-3 business days", "12.99", 3},
	{MethodOvernight, "Overnight Shipping", "Next business day delivery", "24.99", 1},
}

type service struct {
	freeThreshold decimal.Decimal
	now           func() time.Time
}

// NewService builds a shipping service with the configured free threshold.
func NewService(freeThreshold decimal.Decimal) (Service, error) {
	if freeThreshold.IsNegative() {
		return nil, fmt.Errorf("free shipping threshold cannot be negative")
	}
	return &service{freeThreshold: freeThreshold, now: time.Now}, nil
}

func (s *service) Methods(subtotal decimal.Decimal) []types.ShippingMethod {
	out := make([]types.ShippingMethod, 0, len(methodSpecs))
	for _, spec := range methodSpecs {
		out = append(out, s.build(spec, subtotal))
	}
	return out
}

func (s *service) Quote(methodID string, subtotal decimal.Decimal) (*types.ShippingMethod, error) {
	for _, spec := range methodSpecs {
		if spec.id == methodID {
			method := s.build(spec, subtotal)
			return &method, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method").
		WithDetails(map[string]any{"shipping_method": methodID})
}

// DefaultCost is the standard rate used while the cart has no chosen method.
func (s *service) DefaultCost(subtotal decimal.Decimal) decimal.Decimal {
	method, _ := s.Quote(MethodStandard, subtotal)
	return method.Price
}

func (s *service) build(spec methodSpec, subtotal decimal.Decimal) types.ShippingMethod {
	price := decimal.RequireFromString(spec.price)
	if spec.id == MethodStandard && subtotal.GreaterThanOrEqual(s.freeThreshold) && s.freeThreshold.IsPositive() {
		price = decimal.Zero
	}
	eta := s.now().AddDate(0, 0, spec.estimatedDays).Format("2006-01-02")
	return types.ShippingMethod{
		ID:                spec.id,
		Name:              spec.name,
		Description:       spec.description,
		Price:             price,
		EstimatedDays:     spec.estimatedDays,
		EstimatedDelivery: eta,
	}
}

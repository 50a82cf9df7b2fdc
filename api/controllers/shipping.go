package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/api/responses"
	"github.com/countryharvest/storefront-backend/internal/shipping"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/logger"
)

// ShippingMethods lists the quoted methods for an optional cart subtotal, so
// the storefront can show free-shipping eligibility before checkout.
func ShippingMethods(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subtotal := decimal.Zero
		if raw := strings.TrimSpace(r.URL.Query().Get("subtotal")); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil || parsed.IsNegative() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be a non-negative amount"))
				return
			}
			subtotal = parsed
		}
		responses.WriteSuccess(w, svc.Methods(subtotal))
	}
}

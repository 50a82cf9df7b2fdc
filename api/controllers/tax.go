package controllers

import (
	"net/http"

	"github.com/countryharvest/storefront-backend/api/responses"
	"github.com/countryharvest/storefront-backend/api/validators"
	"github.com/countryharvest/storefront-backend/internal/tax"
	"github.com/countryharvest/storefront-backend/pkg/logger"
	"github.com/countryharvest/storefront-backend/pkg/types"
)

type taxQuoteRequest struct {
	Address types.Address `json:"address"`
}

// TaxQuote previews the rate checkout would use for a shipping address.
func TaxQuote(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input taxQuoteRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate := svc.RateFor(input.Address)
		responses.WriteSuccess(w, map[string]string{"rate": rate.String()})
	}
}

package controllers

import (
	"net/http"

	"github.com/countryharvest/storefront-backend/api/responses"
	"github.com/countryharvest/storefront-backend/api/validators"
	"github.com/countryharvest/storefront-backend/internal/checkout"
	"github.com/countryharvest/storefront-backend/pkg/logger"
)

func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input checkout.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Execute(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

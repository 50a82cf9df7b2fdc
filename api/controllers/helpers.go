package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/countryharvest/storefront-backend/api/middleware"
	"github.com/countryharvest/storefront-backend/api/validators"
	"github.com/countryharvest/storefront-backend/internal/cart"
	"github.com/countryharvest/storefront-backend/internal/orders"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/pagination"
)

// ownerFromRequest derives the cart owner: a logged-in user wins over the
// anonymous cart session.
func ownerFromRequest(r *http.Request) (cart.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cart.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cart.UserOwner(userID), nil
	}
	if sessionID := middleware.CartSessionFromContext(r.Context()); sessionID != "" {
		return cart.SessionOwner(sessionID), nil
	}
	return cart.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no cart session")
}

func actorFromRequest(r *http.Request) (orders.Actor, error) {
	actor := orders.Actor{Admin: middleware.IsAdminFromContext(r.Context())}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		actor.UserID = &userID
	}
	return actor, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": name})
	}
	return id, nil
}

func parsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

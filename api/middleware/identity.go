package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/countryharvest/storefront-backend/api/responses"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/logger"
)

const (
	userIDHeader = "X-CH-User-Id"
	roleHeader   = "X-CH-Role"
)

// Identity reads the identity headers set by the storefront edge. The edge
// terminates authentication; this API only trusts its headers, so requests
// that bypass the edge arrive anonymous.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := strings.TrimSpace(r.Header.Get(userIDHeader)); raw != "" {
				if _, err := uuid.Parse(raw); err == nil {
					ctx = WithUserID(ctx, raw)
					if logg != nil {
						ctx = logg.WithUserID(ctx, raw)
					}
				}
			}
			if strings.EqualFold(r.Header.Get(roleHeader), "admin") {
				ctx = WithAdmin(ctx, true)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that carry no authenticated user.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates the back-office surface.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

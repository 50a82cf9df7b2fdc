package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/countryharvest/storefront-backend/api/responses"
	"github.com/countryharvest/storefront-backend/internal/session"
	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
	"github.com/countryharvest/storefront-backend/pkg/logger"
)

const (
	cartTokenHeader = "X-CH-Cart-Token"
	cartTokenCookie = "ch_cart_token"
)

// CartSession resolves the anonymous cart token from the request and, for
// visitors without a valid one, mints a fresh token so every request ends
// up with a usable cart session. The token is echoed back both as a cookie
// and a response header.
func CartSession(mgr *session.Manager, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mgr == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token := tokenFromRequest(r)

			sessionID, err := mgr.Resolve(ctx, token)
			if err != nil && !errors.Is(err, session.ErrUnknownToken) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart session"))
				return
			}
			if errors.Is(err, session.ErrUnknownToken) {
				token, sessionID, err = mgr.Issue(ctx)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue cart session"))
					return
				}
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cartTokenCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(cartTokenHeader, token)

			ctx = WithCartSession(ctx, sessionID)
			ctx = WithCartToken(ctx, token)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(cartTokenHeader)); v != "" {
		return v
	}
	if cookie, err := r.Cookie(cartTokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/foodforall/marketplace/application/account"
	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/utils/errors"
	"github.com/gorilla/mux"
)

// AuthMiddleware returns a middleware that validates JWT sessions using
// AccountApp and attaches the acting identity to the request context.
// Public endpoints (account creation, login, swagger) pass through;
// internal endpoints carry their own API-key check.
func AuthMiddleware(accountApp account.AccountApp) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Public paths
			path := r.URL.Path
			if isPublicPath(path) {
				next.ServeHTTP(w, r)
				return
			}

			// Check Authorization header
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")

			// Validate token via AccountApp
			identity, err := accountApp.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
				return
			}

			// Embed identity into context
			ctx := context.WithValue(r.Context(), constant.AccountIDKey, identity.AccountID)
			ctx = context.WithValue(ctx, constant.AccountEmailKey, identity.Email)
			ctx = context.WithValue(ctx, constant.AccountRoleKey, identity.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isPublicPath defines which endpoints are public (no auth required)
func isPublicPath(path string) bool {
	if strings.HasPrefix(path, "/swagger/") || strings.HasPrefix(path, "/internal/") {
		return true
	}
	if strings.HasPrefix(path, "/accounts/") || path == "/sessions" {
		return true
	}

	return false
}

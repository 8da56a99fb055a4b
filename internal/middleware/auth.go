package middleware

import (
	"net/http"
	"strings"

	"github.com/ovenlight/sms-dispatch/internal/auth"
	"github.com/ovenlight/sms-dispatch/internal/response"
)

// RequireAdmin enforces a valid bearer token (401) and the admin role
// (403) before any domain logic runs. It wraps individual routes rather
// than the whole mux so health, docs and metrics stay open.
func RequireAdmin(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			claims, err := auth.ParseToken(token, jwtSecret)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if !claims.IsAdmin() {
				response.RespondError(w, http.StatusForbidden, "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

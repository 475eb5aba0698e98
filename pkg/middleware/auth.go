package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/kproduct/pkg/auth"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/response"
)

// Auth requires a valid "Authorization: Bearer <jwt>" signed with secret and
// stores its claims in the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.Parse(key, token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("rejected token", "error", err)
				response.Unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuthority answers 403 unless the authenticated caller holds
// authority. It must run after Auth.
func RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.FromCtx(r.Context())
			if claims == nil {
				response.Unauthorized(w)
				return
			}
			if !claims.HasAuthority(authority) {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

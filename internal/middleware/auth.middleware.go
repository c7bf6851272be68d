package middleware

import (
	"net/http"
	"strings"

	"notification-service/pkg/jwtutil"
	"notification-service/pkg/response"
)

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
}

func NewAuthMiddleware(verifier *jwtutil.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Middleware validates the bearer token and stashes the caller's id
// and role claim on the request context.
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			// Browsers cannot set headers on websocket upgrades.
			if t := r.URL.Query().Get("token"); t != "" {
				header = "Bearer " + t
			}
		}
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(w, http.StatusUnauthorized, "Missing or malformed Authorization header")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := am.verifier.ParseAndValidate(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, setContextValues(r, claims, token))
	})
}

// Package middleware carries the admin dashboard's ambient HTTP
// concerns: bearer auth and rate limiting. This authenticates the
// optional operator dashboard only; the CLI itself has no user
// authentication of its own.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mercadolab/workflow-engine/internal/config"
)

// Claims represents JWT claims for a dashboard session
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// Auth returns a bearer-token authentication middleware gating /ws.
// A no-op when cfg.Enabled is false.
func Auth(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

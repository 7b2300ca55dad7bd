// Package middleware provides HTTP middleware for the API surface.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openmart/mini-commerce/services"
)

type contextKey string

// claimsKey is the request-context key holding the authenticated claims.
const claimsKey contextKey = "authClaims"

// tokenParser verifies a raw token and returns its claims.
type tokenParser interface {
	Parse(token string) (*services.Claims, error)
}

// Auth validates Bearer tokens on wrapped handlers.
type Auth struct {
	tokens tokenParser
	log    zerolog.Logger
}

func NewAuth(tokens tokenParser, log zerolog.Logger) *Auth {
	return &Auth{tokens: tokens, log: log}
}

// Require rejects requests without a valid Bearer token and stores the
// claims on the request context for downstream handlers.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "Invalid Authorization header format")
			return
		}

		claims, err := a.tokens.Parse(parts[1])
		if err != nil {
			a.log.Warn().Err(err).Msg("token validation failed")
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the authenticated claims stored on the context, if any.
func ClaimsFrom(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

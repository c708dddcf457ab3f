// Package middleware provides HTTP middlewares for authentication, rate
// limiting and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/denylist"
	"github.com/atinyakov/FinWise/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(tokenStr string) (*token.Claims, error)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="finwise"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// BearerAuth rejects requests without a valid, unrevoked bearer token.
//
// On success the token claims are stored in the request context; the user
// ID (the subject claim) is available through GetUserIDFromContext.
func BearerAuth(tokens TokenParser, deny denylist.Denylist, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				unauthorized(w, "authentication required")
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			revoked, err := deny.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				log.Error("denylist lookup failed", zap.Error(err))
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if revoked {
				unauthorized(w, "session has ended")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by BearerAuth, or nil.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	c, _ := ctx.Value(claimsKey).(*token.Claims)
	return c
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// WithClaims returns a copy of ctx carrying claims. Handlers under test use
// it to skip BearerAuth.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

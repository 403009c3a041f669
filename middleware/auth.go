package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskcanvas/logging"
	"taskcanvas/models"
	"taskcanvas/services"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator resolves a bearer token to its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

// JWTAuth rejects requests without a valid, unrevoked bearer token and
// stores the token's claims in the request context.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				WriteError(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader || tokenStr == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer token missing for request to %s %s", r.Method, r.URL.Path)
				WriteError(w, http.StatusUnauthorized, "Bearer token missing")
				return
			}

			claims, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				msg := "Invalid token"
				var modelErr *models.Error
				if errors.As(err, &modelErr) {
					msg = modelErr.Msg
				}
				WriteError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by JWTAuth.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}

// WithClaims returns ctx carrying claims, as JWTAuth would store them.
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// WriteError writes a {"message": ...} body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

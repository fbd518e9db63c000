// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type identityKey struct{}

// Authenticator verifies bearer tokens issued by the identity layer and
// binds the token subject to the request context as the player id.
type Authenticator struct {
	key []byte
}

// NewAuthenticator creates an authenticator for the shared HMAC key.
// Returns nil for an empty key, which disables authentication.
func NewAuthenticator(key string) *Authenticator {
	if key == "" {
		return nil
	}
	return &Authenticator{key: []byte(key)}
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the request context.
func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind("api.auth", ErrForbidden))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return a.key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind("api.auth", ErrForbidden))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// IdentityFrom returns the authenticated player id, if any.
func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok
}

package http

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// authenticator validates bearer tokens and resolves the owning user.
// Tokens are HS256 signed with the shared secret; the subject claim carries
// the user id issued by the identity provider.
type authenticator struct {
	secret  []byte
	metrics *securityMetrics
}

func newAuthenticator(secret string, metrics *securityMetrics) *authenticator {
	return &authenticator{secret: []byte(secret), metrics: metrics}
}

// ownerID extracts and verifies the bearer token, returning the token subject.
func (a *authenticator) ownerID(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		atomic.AddInt64(&a.metrics.authFailures, 1)
		return "", false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		atomic.AddInt64(&a.metrics.authFailures, 1)
		return "", false
	}
	return claims.Subject, true
}

// withOwner stores the authenticated owner id on the request context.
func withOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// ownerFromContext returns the authenticated owner id set by the auth middleware.
func ownerFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}

// Package auth issues and resolves the bearer tokens that identify
// shoppers. Resolution is deliberately lenient: a missing, malformed, or
// expired token yields an anonymous context instead of an error, and
// operations that need an identity check for it explicitly.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Context carries the optional authenticated identity of one request.
// The zero value is anonymous.
type Context struct {
	UserID int64
}

// Authenticated reports whether the request carries a verified identity.
func (c Context) Authenticated() bool { return c.UserID != 0 }

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	expiry time.Duration
}

func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{secret: []byte(secret), expiry: expiry}
}

// Issue creates a signed token for the given account.
func (m *Manager) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve derives a Context from a raw Authorization header value.
// Any failure — absent header, wrong scheme, bad signature, expiry —
// resolves to the anonymous context. Pure derivation, no I/O.
func (m *Manager) Resolve(authorization string) Context {
	raw := strings.TrimSpace(authorization)
	if raw == "" {
		return Context{}
	}
	if scheme, rest, found := strings.Cut(raw, " "); found && strings.EqualFold(scheme, "Bearer") {
		raw = strings.TrimSpace(rest)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return Context{}
	}
	return Context{UserID: claims.UserID}
}

// ── Request context plumbing ────────────────────────────────

type contextKey string

const authKey contextKey = "auth"

// FromContext extracts the auth Context stored by the middleware.
// Returns the anonymous context when none is set.
func FromContext(ctx context.Context) Context {
	if v, ok := ctx.Value(authKey).(Context); ok {
		return v
	}
	return Context{}
}

// WithContext stores the auth Context for downstream handlers.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, authKey, ac)
}

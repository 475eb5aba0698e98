// Package auth issues and validates the HS256 JWTs accepted by the API.
//
// Tokens carry the subject and a comma-separated "auth" claim listing the
// caller's authorities, the shape a JHipster gateway forwards:
//
//	{"sub": "admin", "auth": "ROLE_ADMIN,ROLE_USER", "exp": 1700000000}
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/kproduct/config"
)

// ErrNoSecret is returned when JWT_SECRET is not configured.
var ErrNoSecret = errors.New("auth: JWT_SECRET is not set")

// Claims holds the typed JWT payload.
type Claims struct {
	Auth string `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// Authorities splits the auth claim.
func (c *Claims) Authorities() []string {
	if c.Auth == "" {
		return nil
	}
	parts := strings.Split(c.Auth, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasAuthority reports whether the token grants authority.
func (c *Claims) HasAuthority(authority string) bool {
	for _, a := range c.Authorities() {
		if a == authority {
			return true
		}
	}
	return false
}

// Sign creates a token for subject valid for ttl.
func Sign(secret []byte, subject string, authorities []string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		Auth: strings.Join(authorities, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates token against secret. Only HS256 is accepted.
func Parse(secret []byte, token string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GenerateToken signs with the configured JWT_SECRET.
func GenerateToken(subject string, authorities []string, ttl time.Duration) (string, error) {
	return Sign([]byte(config.JWTSecret()), subject, authorities, ttl)
}

// ValidateToken parses with the configured JWT_SECRET.
func ValidateToken(token string) (*Claims, error) {
	return Parse([]byte(config.JWTSecret()), token)
}

// ─── Context ──────────────────────────────────────────────────────────────────

type ctxKey struct{}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromCtx returns the claims of the authenticated caller, or nil.
func FromCtx(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of JWT claims the client cares about for
// diagnostics. Tokens are opaque to the client as far as authentication
// goes; introspection exists only for logging and probing.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IntrospectToken decodes token without verifying its signature (the
// client holds no keys) and reports whether it looked like a JWT at all.
// Opaque tokens are perfectly valid sessions; they just return ok=false.
func IntrospectToken(token string) (TokenClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, false
	}

	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, true
}

// Expired reports whether the claims carry an expiry in the past. Claims
// without an expiry never expire from the client's point of view.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Package jwtx inspects bearer tokens on the client side.
//
// The client never verifies signatures (it does not hold the server secret);
// it only peeks at registered claims to decide whether a persisted token can
// still plausibly back a session. Opaque (non-JWT) tokens are passed through
// untouched — expiry is then entirely the server's call.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsExpired reports whether tokenString is a parsable JWT whose exp claim
// lies in the past relative to now.
//
// It returns false for opaque tokens, for JWTs without an exp claim, and for
// JWTs that are still valid: only a provably expired token yields true.
func IsExpired(tokenString string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenString)
	if !ok {
		return false
	}
	return exp.Before(now)
}

// ExpiresAt extracts the exp claim from tokenString without verifying the
// signature. The second return value is false when the token is not a JWT or
// carries no exp claim.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrNoExpiry = errors.New("token missing exp claim")

// ExpiresAt extracts the expiry claim from a signed token without verifying
// the signature. The backend is the only party that verifies tokens; the
// client only needs the expiry to decide whether a refresh attempt is worth
// a network round trip.
func ExpiresAt(rawToken string) (time.Time, error) {
	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return time.Time{}, errors.New("error extracting claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, ErrNoExpiry
	}

	return time.Unix(int64(exp), 0), nil
}

// Expired reports whether the token's exp claim is in the past. Malformed
// tokens count as expired: a token the client cannot decode is a token the
// backend will not accept either.
func Expired(rawToken string) bool {
	exp, err := ExpiresAt(rawToken)
	if err != nil {
		return true
	}
	return NowTimeFunc().After(exp)
}

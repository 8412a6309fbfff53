// Package tokenx inspects stored access tokens. Tokens are never verified
// here: the client does not hold the server's signing key, it only reads the
// claims it needs for housekeeping.
package tokenx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for tokens that are not a JWT.
var ErrMalformedToken = errors.New("token is not a JWT")

// Expiry returns the exp claim of token. ok is false when the token is a JWT
// without an exp claim.
func Expiry(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	nd, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if nd == nil {
		return time.Time{}, false, nil
	}
	return nd.Time, true, nil
}

// Expired reports whether token carries an exp claim at or before now.
// Tokens without exp, and opaque tokens, are treated as not expired.
func Expired(token string, now time.Time) bool {
	exp, ok, err := Expiry(token)
	if err != nil || !ok {
		return false
	}
	return !now.Before(exp)
}

package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// UpstreamClaim is the part of the backend's login token the gateway reads.
type UpstreamClaim struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

var ErrTokenWithoutExpiry = errors.New("token has no expiry")

// UpstreamTokenExpiry reads the exp claim of a backend token. The signature
// is not checked: the gateway never trusts the token, it only forwards it.
func UpstreamTokenExpiry(token string) (time.Time, error) {
	claims := &UpstreamClaim{}
	_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, ErrTokenWithoutExpiry
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// SessionExpiry is min(upstream token exp, now+ttl). Tokens without a
// readable expiry get the full ttl.
func SessionExpiry(upstreamToken string, now time.Time, ttl time.Duration) time.Time {
	limit := now.Add(ttl)
	exp, err := UpstreamTokenExpiry(upstreamToken)
	if err != nil || exp.After(limit) {
		return limit
	}
	return exp
}

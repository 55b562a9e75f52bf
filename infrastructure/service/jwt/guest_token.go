package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoExpiry     = errors.New("token has no exp claim")
)

// GuestTokenClaims are the claims of a platform guest token that we read.
// The signature is the platform's to check; nothing here trusts the token.
type GuestTokenClaims struct {
	Subject   string
	Name      string
	ExpiresAt time.Time
}

// InspectGuestToken decodes a guest token without verifying it.
func InspectGuestToken(tokenString string) (*GuestTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if exp == nil {
		return nil, ErrNoExpiry
	}

	sub, _ := claims.GetSubject()
	name, _ := claims["name"].(string)

	return &GuestTokenClaims{
		Subject:   sub,
		Name:      name,
		ExpiresAt: exp.Time,
	}, nil
}

// ExpiresIn is the lifetime left on a guest token in whole seconds, zero when
// it cannot be read or has already expired.
func ExpiresIn(tokenString string, now time.Time) int {
	claims, err := InspectGuestToken(tokenString)
	if err != nil {
		return 0
	}
	left := claims.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

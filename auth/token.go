// Package auth issues the HS256 tokens that middleware.ValidateToken accepts.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs user tokens with a shared secret.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
}

// Issue returns a signed token for userID and its expiry.
func (i Issuer) Issue(userID, role string) (string, time.Time, error) {
	expires := time.Now().Add(i.TTL)
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

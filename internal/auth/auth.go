// Package auth validates the bearer credentials issued by the identity
// provider and exposes the caller's role.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ErrInvalidToken is returned for missing, malformed or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the token payload this service cares about: the standard
// registered claims plus the caller's role.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller holds the administrative role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// ParseToken validates an HMAC-signed token string and returns its claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

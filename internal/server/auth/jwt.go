// Package auth implements the cryptographic capabilities consumed by the
// services layer: the signed access-token codec and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Claims is the signed payload of an access token: the user's email as
// subject plus a custom role claim.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// SigningMethod resolves an algorithm name from config into a jwt signing
// method. Only HMAC variants are supported.
func SigningMethod(name string) (jwt.SigningMethod, error) {
	switch name {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %q", name)
	}
}

// GenerateToken mints a signed access token for the given subject and role.
func GenerateToken(email string, role string, secretKey []byte, method jwt.SigningMethod, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies a token's signature and expiry and returns its claims.
// The signing method is pinned to the configured one, so a token signed with
// a different algorithm fails verification even with a valid signature.
//
// An expired token is reported as common.ErrTokenExpired; every other
// problem (bad signature, malformed payload, missing subject) collapses to
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, method jwt.SigningMethod) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{method.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

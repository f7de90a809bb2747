package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AppClaims are the JWT claims issued by this application. SystemAdmin rides
// along so middleware can flag platform operators without a user lookup; the
// tenancy resolver still re-checks the user row on every mutation.
type AppClaims struct {
	SystemAdmin bool `json:"sysadmin,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a signed access token for the user.
func GenerateJWT(userID string, systemAdmin bool, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := AppClaims{
		SystemAdmin: systemAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a token string, validates its signature and
// standard claims, and returns the application claims.
func ParseAndValidateJWT(tokenString string, secretKey string) (*AppClaims, error) {
	claims := &AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}

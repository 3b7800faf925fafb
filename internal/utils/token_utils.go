package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FirmClaims are the access-token claims: standard registered claims plus
// the firm the user belongs to, so every request is tenant-scoped without a
// database lookup.
type FirmClaims struct {
	FirmID string `json:"firmID"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a signed access token for a user within a firm.
func GenerateJWT(userID, firmID, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := FirmClaims{
		FirmID: firmID,
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

// ParseAndValidateJWT parses a token string and validates its signature and
// standard claims. Returns the claims if the token is valid.
func ParseAndValidateJWT(tokenString string, secretKey string) (*FirmClaims, error) {
	claims := &FirmClaims{}

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

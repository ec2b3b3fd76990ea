package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")

	jwtSecret []byte
)

// Claims carry the id of the user the token was issued for.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// InitJWT sets the HMAC secret used to sign and verify tokens.
func InitJWT(secret string) {
	if secret == "" {
		panic("JWT secret is empty")
	}
	jwtSecret = []byte(secret)
}

func GenerateJWT(userID int64) (string, error) {
	return GenerateJWTWithTTL(userID, defaultTokenTTL)
}

func GenerateJWTWithTTL(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT verifies the token and returns its user id. Tokens must be HS256, unexpired
// and carry a positive user_id.
func ParseJWT(tokenString string) (int64, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, errors.New("user_id not found")
	}
	return claims.UserID, nil
}

package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(42)
	require.NoError(t, err)

	userID, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParseJWT_Rejects(t *testing.T) {
	InitJWT("test-secret")

	expired, err := GenerateJWTWithTTL(1, -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	otherToken, err := otherKey.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	noExpToken, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	noUserToken, err := noUser.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"alg none":     noneToken,
		"wrong secret": otherToken,
		"no exp":       noExpToken,
		"no user":      noUserToken,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJWT(tok)
			assert.Error(t, err)
		})
	}
}

package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenCarriesWheelClaims(t *testing.T) {
	secret := "test-secret"
	cl := Claims{UserID: 42, Role: "CUSTOMER", ShopID: 7, Subscriber: true}

	at, err := NewAccessToken(secret, cl, 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
	assert.EqualValues(t, 7, claims["shop"])
	assert.Equal(t, true, claims["subscriber"])
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96) // 48 random bytes, hex encoded

	h1 := HashRefreshRaw(rt.Raw)
	h2 := HashRefreshRaw(rt.Raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, rt.Raw, h1)
	assert.Len(t, h1, 64) // sha256 hex
}

func TestNewRedemptionCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewRedemptionCode()
		assert.Len(t, code, 12)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "codes should not repeat")
		seen[code] = true
	}
}

package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key"})
	now := time.Now()

	token, err := j.GenerateToken(AdminClaims{UserID: "admin", Email: "admin@drcuber.com", Name: "Admin", Role: "admin"},
		"sess-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.Equal(t, "admin@drcuber.com", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID())
}

func TestValidateRejectsExpired(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key"})
	past := time.Now().Add(-2 * time.Hour)

	token, err := j.GenerateToken(AdminClaims{UserID: "admin"}, "sess-1", past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	now := time.Now()
	token, err := NewJWTUtil(&JWTConfig{SigningKey: "other"}).
		GenerateToken(AdminClaims{UserID: "admin"}, "sess-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "test-key"}).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{UserID: "admin"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "test-key"}).ValidateToken(raw)
	assert.Error(t, err)
}

func TestMissingConfiguration(t *testing.T) {
	_, err := NewJWTUtil(nil).GenerateToken(AdminClaims{}, "s", time.Now(), time.Now())
	assert.Error(t, err)
}

package auth_test

import (
	"blog-admin/internal/auth"
	"context"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var settings = auth.Settings{
	SigningKey: []byte("test-signing-key"),
	TokenTtl:   time.Hour,
	CookieName: "__session",
}

func TestGenerateAndValidateToken(t *testing.T) {
	tokenString, expiresAt, err := auth.GenerateToken(context.Background(), settings, 7, "alice", []string{"admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := auth.ValidateToken(tokenString, settings.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserId)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.HasRole("admin"))
	assert.Equal(t, "blog-admin", claims.Issuer)
}

func TestValidateToken_Rejects(t *testing.T) {
	expired := settings
	expired.TokenTtl = -time.Minute
	expiredToken, _, err := auth.GenerateToken(context.Background(), expired, 1, "alice", []string{"admin"})
	require.NoError(t, err)

	_, err = auth.ValidateToken(expiredToken, settings.SigningKey)
	assert.Error(t, err)

	validToken, _, err := auth.GenerateToken(context.Background(), settings, 1, "alice", []string{"admin"})
	require.NoError(t, err)
	_, err = auth.ValidateToken(validToken, []byte("wrong"))
	assert.Error(t, err)

	_, err = auth.ValidateToken("", settings.SigningKey)
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestEmptySigningKey(t *testing.T) {
	unkeyed := settings
	unkeyed.SigningKey = nil
	_, _, err := auth.GenerateToken(context.Background(), unkeyed, 1, "mallory", []string{"admin"})
	assert.ErrorIs(t, err, auth.ErrNoKey)

	// a token signed with an empty HMAC key, as anyone could forge it
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Username:       "mallory",
		Roles:          []string{"admin"},
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString([]byte{})
	require.NoError(t, err)

	_, err = auth.ValidateToken(forged, []byte{})
	assert.ErrorIs(t, err, auth.ErrNoKey)
	_, err = auth.ValidateToken(forged, settings.SigningKey)
	assert.Error(t, err)
}

func TestAdminFromClaims(t *testing.T) {
	admin, err := auth.AdminFromClaims(&auth.Claims{UserId: 3, Username: "root", Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username())
	assert.Equal(t, []string{"admin"}, admin.Roles())

	_, err = auth.AdminFromClaims(&auth.Claims{Username: "bob", Roles: []string{"user"}})
	assert.ErrorIs(t, err, auth.ErrNotAdmin)

	_, err = auth.AdminFromClaims(nil)
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
}

func TestBearerToken(t *testing.T) {
	token, err := auth.BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "abc.def", "Bearer ", "Basic abc"} {
		_, err = auth.BearerToken(header)
		assert.ErrorIs(t, err, auth.ErrNoToken, header)
	}
}

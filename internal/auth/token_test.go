package auth

import (
	"path/filepath"
	"testing"
	"time"

	"chapak/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": "u1", "role": "admin"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	store := NewTokenStore(path)
	assert.Equal(t, "", store.Token())
	assert.Nil(t, store.User())

	user := &models.User{Email: "admin@park.test", Role: "admin"}
	require.NoError(t, store.Save("jwt-token", user))

	// A fresh store reads the session back from disk.
	reloaded := NewTokenStore(path)
	assert.Equal(t, "jwt-token", reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "admin@park.test", reloaded.User().Email)
}

func TestTokenStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	store := NewTokenStore(path)
	require.NoError(t, store.Save("jwt-token", nil))
	require.NoError(t, store.Clear())

	assert.Equal(t, "", store.Token())
	assert.Equal(t, "", NewTokenStore(path).Token())

	// Clearing an already-clean store is fine.
	require.NoError(t, store.Clear())
}

func TestTokenStoreMissingFile(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "absent.json"))
	assert.Equal(t, "", store.Token())
	assert.False(t, store.Expired())
}

func TestExpiresAt(t *testing.T) {
	store := &TokenStore{}

	t.Run("NoToken", func(t *testing.T) {
		assert.True(t, store.ExpiresAt().IsZero())
	})

	t.Run("WithExp", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		require.NoError(t, store.Save(signedToken(t, exp), nil))
		assert.Equal(t, exp.Unix(), store.ExpiresAt().Unix())
		assert.False(t, store.Expired())
	})

	t.Run("Expired", func(t *testing.T) {
		require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Hour)), nil))
		assert.True(t, store.Expired())
	})

	t.Run("NoExpClaim", func(t *testing.T) {
		require.NoError(t, store.Save(signedToken(t, time.Time{}), nil))
		assert.True(t, store.ExpiresAt().IsZero())
		assert.False(t, store.Expired())
	})

	t.Run("Garbage", func(t *testing.T) {
		require.NoError(t, store.Save("not-a-jwt", nil))
		assert.True(t, store.ExpiresAt().IsZero())
	})
}

package auth

import (
	"context"
	"testing"
	"time"

	"baby-bliss/internal/cache"
	"baby-bliss/internal/config"
	"baby-bliss/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Issuer:    "baby-bliss",
	}, cache.NewMemory())
}

func TestIssueAndParse(t *testing.T) {
	m := newManager()
	user := &models.User{ID: 7, Username: "staff", Role: models.RoleStaff}

	token, exp, err := m.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "staff", claims.Username)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "baby-bliss", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	m := newManager()
	user := &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
	token, _, err := m.Issue(user)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour, Issuer: "baby-bliss"}, cache.NewMemory())
		_, err := other.Parse(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "someone-else"}, cache.NewMemory())
		_, err := other.Parse(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newManager()
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(context.Background(), old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: models.RoleAdmin})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	m := newManager()
	token, _, err := m.Issue(&models.User{ID: 3, Username: "viewer", Role: models.RoleViewer})
	require.NoError(t, err)

	claims, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), claims))

	_, err = m.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	other, _, err := m.Issue(&models.User{ID: 3, Username: "viewer", Role: models.RoleViewer})
	require.NoError(t, err)
	_, err = m.Parse(context.Background(), other)
	assert.NoError(t, err, "revocation is per token, not per user")
}

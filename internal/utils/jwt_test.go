package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-unit-test-secret"

func TestJWTManager(t *testing.T) {
	mgr := NewJWTManager(testSecret, 15, 7)

	t.Run("access and refresh tokens are distinct but share the identity", func(t *testing.T) {
		access, _, err := mgr.GenerateAccessToken(7)
		require.NoError(t, err)
		refresh, _, err := mgr.GenerateRefreshToken(7)
		require.NoError(t, err)

		assert.NotEqual(t, access, refresh)

		accessClaims, err := mgr.Parse(access)
		require.NoError(t, err)
		refreshClaims, err := mgr.Parse(refresh)
		require.NoError(t, err)

		assert.Equal(t, uint(7), accessClaims.UserID)
		assert.Equal(t, uint(7), refreshClaims.UserID)
		assert.Equal(t, TokenKindAccess, accessClaims.Kind)
		assert.Equal(t, TokenKindRefresh, refreshClaims.Kind)
	})

	t.Run("re-issuing for the same account yields a fresh token", func(t *testing.T) {
		first, _, err := mgr.GenerateRefreshToken(7)
		require.NoError(t, err)
		second, _, err := mgr.GenerateRefreshToken(7)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("expiries follow the configured TTLs", func(t *testing.T) {
		_, accessExp, err := mgr.GenerateAccessToken(1)
		require.NoError(t, err)
		_, refreshExp, err := mgr.GenerateRefreshToken(1)
		require.NoError(t, err)

		assert.WithinDuration(t, time.Now().Add(15*time.Minute), accessExp, 5*time.Second)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refreshExp, 5*time.Second)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-another-secret", 15, 7)
		token, _, err := other.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = mgr.Parse(token)
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewJWTManager(testSecret, -1, 7)
		token, _, err := expired.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = mgr.Parse(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := mgr.Parse("not.a.jwt")
		assert.Error(t, err)
	})
}

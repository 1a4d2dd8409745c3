package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testSecret, time.Minute)

	signed, jti, err := mgr.GenerateAccessToken("user-1", "Health Promoter")
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := mgr.ParseAndValidate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Health Promoter", claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager(testSecret, -time.Minute)

	signed, _, err := mgr.GenerateAccessToken("user-1", "Administrator")
	require.NoError(t, err)

	_, err = mgr.ParseAndValidate(signed)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	mgr := NewJWTManager(testSecret, time.Minute)
	other := NewJWTManager("ffffffffffffffffffffffffffffffff", time.Minute)

	signed, _, err := mgr.GenerateAccessToken("user-1", "Administrator")
	require.NoError(t, err)

	_, err = other.ParseAndValidate(signed)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := Hash("correct horse battery")
	require.NoError(t, err)

	ok, err := Verify("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

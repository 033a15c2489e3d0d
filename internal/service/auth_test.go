package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/delivery-admin/config"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
		TokenTTL:          time.Hour,
	})
}

func TestAuth_LoginAndVerify(t *testing.T) {
	auth := newTestAuth(t)
	token, exp, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	user, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
}

func TestAuth_RejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)
	_, _, err := auth.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login("root", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_ExpiredAndForeignTokens(t *testing.T) {
	auth := newTestAuth(t)
	token, _, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newTestAuth(t)
	other.secret = []byte("another")
	other.now = auth.now
	forged, _, err := other.Login("admin", "s3cret")
	require.NoError(t, err)
	_, err = auth.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_Disabled(t *testing.T) {
	auth := NewAuthService(config.AuthConfig{})
	assert.False(t, auth.Enabled())
	_, _, err := auth.Login("admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T, ttl time.Duration) *Gate {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	return NewGate("frontdesk", hash, []byte("test-signing-key"), ttl)
}

func TestLoginAndVerify(t *testing.T) {
	gate := newTestGate(t, time.Hour)

	token, err := gate.Login("frontdesk", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := gate.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleReceptionist, claims.Role)
	assert.Equal(t, "frontdesk", claims.Subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	gate := newTestGate(t, time.Hour)

	_, err := gate.Login("frontdesk", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = gate.Login("admin", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_NotConfigured(t *testing.T) {
	gate := NewGate("", "", nil, time.Hour)

	_, err := gate.Login("frontdesk", "s3cret")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerify_GarbageToken(t *testing.T) {
	gate := newTestGate(t, time.Hour)

	_, err := gate.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongKey(t *testing.T) {
	gate := newTestGate(t, time.Hour)
	token, err := gate.Login("frontdesk", "s3cret")
	require.NoError(t, err)

	// Same claims, different signing key.
	otherGate := NewGate("frontdesk", gate.passwordHash, []byte("another-key"), time.Hour)
	_, err = otherGate.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	gate := newTestGate(t, -time.Minute)

	token, err := gate.Login("frontdesk", "s3cret")
	require.NoError(t, err)

	_, err = gate.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

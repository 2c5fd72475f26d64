package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret")

	token, err := m.GenerateToken(42, "fan@example.com", "ADMIN")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "fan@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret")
	issued := time.Now().Add(-8 * 24 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken(1, "a@b.c", "USER")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("one").GenerateToken(1, "a@b.c", "USER")
	require.NoError(t, err)

	_, err = NewManager("two").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

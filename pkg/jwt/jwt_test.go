package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *Manager {
	return NewManager("test-secret", "test", time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	m := newManager()
	id := uuid.New()

	token, err := m.GenerateToken(id, "cashier@example.com", "cashier")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	m := newManager()
	token, err := m.GenerateToken(uuid.New(), "a@example.com", "owner")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("other", "test", time.Hour)
	foreign, err := other.GenerateToken(uuid.New(), "b@example.com", "owner")
	require.NoError(t, err)
	_, err = newManager().ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

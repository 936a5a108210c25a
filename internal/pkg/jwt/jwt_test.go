package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret", "flota", time.Hour)

	token, jti, err := m.Generate(42, false, "UP3")
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.False(t, claims.Admin)
	assert.Equal(t, "UP3", claims.Unidad)
	assert.Equal(t, jti, claims.ID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewManager("secret-a", "flota", time.Hour)
	other := NewManager("secret-b", "flota", time.Hour)

	token, _, err := m.Generate(1, true, "DG")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", "flota", -time.Minute)

	token, _, err := m.Generate(1, false, "UP1")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	m := NewManager("test-secret", "someone-else", time.Hour)
	v := NewManager("test-secret", "flota", time.Hour)

	token, _, err := m.Generate(1, false, "UP1")
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.Error(t, err)
}

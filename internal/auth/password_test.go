package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	for _, password := range []string{"password123", "", strings.Repeat("a", 70), "contraseña_ñ"} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$"), hash)
		assert.NotEqual(t, password, hash)
		assert.True(t, CheckPassword(password, hash))
	}
}

func TestHashPasswordSalted(t *testing.T) {
	hash1, err := HashPassword("test123")
	require.NoError(t, err)
	hash2, err := HashPassword("test123")
	require.NoError(t, err)

	// bcrypt солит каждый хеш
	assert.NotEqual(t, hash1, hash2)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "correct123", hash, true},
		{"wrong password", "wrong123", hash, false},
		{"case sensitive", "Correct123", hash, false},
		{"empty password", "", hash, false},
		{"invalid hash", "correct123", "invalid-hash", false},
		{"empty hash", "correct123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.password, tt.hash))
		})
	}
}

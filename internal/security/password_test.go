package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare-server/internal/security"
)

func TestHashPassword_CheckPassword(t *testing.T) {
	hash, err := security.HashPassword("StrongPass123!")
	require.NoError(t, err)

	assert.NotEqual(t, "StrongPass123!", hash)
	assert.True(t, security.CheckPassword("StrongPass123!", hash))
	assert.False(t, security.CheckPassword("wrong", hash))
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, security.CheckPassword("any", "not-a-bcrypt-hash"))
}

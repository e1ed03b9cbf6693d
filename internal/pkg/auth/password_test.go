package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$12$"))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("secret123")
	require.NoError(t, err)
	second, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword(hash, ""))
	assert.False(t, CheckPassword("not-a-hash", "secret123"))
}

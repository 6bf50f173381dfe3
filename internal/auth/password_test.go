package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	// Cost 4 keeps the test fast; production uses DefaultBcryptCost.
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "secret123")

	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
	assert.False(t, VerifyPassword(hash, ""))
	assert.False(t, VerifyPassword("", "secret123"))
}

func TestHashPasswordDefaultCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)
	// bcrypt encodes the cost in the hash prefix: $2a$12$...
	assert.True(t, strings.HasPrefix(hash, "$2a$12$"), "got %q", hash)
}

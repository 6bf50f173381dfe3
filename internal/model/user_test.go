package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "sales", "manager", "admin", "customer"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	for _, s := range []string{"", "root", "Admin", "USER", "superuser", " user"} {
		_, err := ParseRole(s)
		assert.Error(t, err, "role %q", s)
	}
}

func TestUserPublicOmitsCredentials(t *testing.T) {
	u := User{
		ID:           "u-1",
		Email:        "a@x.com",
		PasswordHash: "$2a$12$should-not-leak",
		FirstName:    "A",
		LastName:     "B",
		Role:         RoleSales,
		IsActive:     true,
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "should-not-leak")
	assert.Contains(t, string(raw), `"role":"sales"`)
}

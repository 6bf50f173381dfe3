package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvDays(t *testing.T) {
	const key = "TEST_TOKEN_LIFETIME"
	def := 7 * 24 * time.Hour

	cases := []struct {
		value string
		want  time.Duration
	}{
		{"", def},
		{"7", 7 * 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
		{"168h", 168 * time.Hour},
		{"30m", 30 * time.Minute},
	}
	for _, tc := range cases {
		t.Run("value "+tc.value, func(t *testing.T) {
			t.Setenv(key, tc.value)
			assert.Equal(t, tc.want, envDays(key, def))
		})
	}
}

func TestEnvBool(t *testing.T) {
	const key = "TEST_FLAG"

	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		t.Setenv(key, v)
		assert.True(t, envBool(key, false), "value %q", v)
	}
	for _, v := range []string{"0", "false", "no", "off"} {
		t.Setenv(key, v)
		assert.False(t, envBool(key, true), "value %q", v)
	}
	t.Setenv(key, "whatever")
	assert.True(t, envBool(key, true), "unrecognized value falls back to default")
}

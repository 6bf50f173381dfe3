package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/model"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func testIdentity() Identity {
	return Identity{UserID: "2f5c9a1e-0000-4000-8000-000000000001", Email: "a@x.com", Role: model.RoleUser}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, testIdentity(), time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := Verify(testAccessSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), got)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := NewRefreshToken(testRefreshSecret, testIdentity(), 30*24*time.Hour)
	require.NoError(t, err)

	got, err := Verify(testRefreshSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity().UserID, got.UserID)
	assert.Equal(t, testIdentity().Email, got.Email)
	// Refresh tokens carry no role claim.
	assert.Empty(t, got.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = Verify("some-other-secret", tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// An access token must not verify under the refresh secret either.
	_, err = Verify(testRefreshSecret, tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, testIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = Verify(testAccessSecret, tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTampered(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, testIdentity(), time.Hour)
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	raw := []byte(tok.Value)
	i := len(raw) / 2
	if raw[i] == 'A' {
		raw[i] = 'B'
	} else {
		raw[i] = 'A'
	}

	_, err = Verify(testAccessSecret, string(raw))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := Verify(testAccessSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestVerifyRejectsUnknownRoleClaim(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, Identity{
		UserID: "u1", Email: "a@x.com", Role: model.Role("superduper"),
	}, time.Hour)
	require.NoError(t, err)

	_, err = Verify(testAccessSecret, tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/auth"
	"github.com/abetworks/crm-backend/internal/model"
)

const testSecret = "mw-test-secret"

func protectedRequest(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	tok, err := auth.NewAccessToken(testSecret, auth.Identity{
		UserID: "u1", Email: "a@x.com", Role: model.RoleSales,
	}, time.Hour)
	require.NoError(t, err)

	rec, c := protectedRequest(t, "Bearer "+tok.Value)
	called := false
	next := func(c echo.Context) error {
		called = true
		assert.Equal(t, "u1", c.Get(CtxUserID))
		assert.Equal(t, "a@x.com", c.Get(CtxEmail))
		assert.Equal(t, model.RoleSales, c.Get(CtxRole))
		assert.Equal(t, "u1", UserID(c))
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, Authenticate(testSecret)(next)(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejects(t *testing.T) {
	expired, err := auth.NewAccessToken(testSecret, auth.Identity{UserID: "u1", Email: "a@x.com"}, -time.Minute)
	require.NoError(t, err)
	otherSecret, err := auth.NewAccessToken("other", auth.Identity{UserID: "u1", Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"malformed token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + otherSecret.Value},
		{"expired", "Bearer " + expired.Value},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, c := protectedRequest(t, tc.header)
			next := func(c echo.Context) error {
				t.Fatal("downstream handler must not run")
				return nil
			}
			require.NoError(t, Authenticate(testSecret)(next)(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

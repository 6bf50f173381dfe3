package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abetworks/crm-backend/internal/model"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     any // value stored in context; nil means Authenticate never ran
		allowed  []model.Role
		wantCode int
	}{
		{"allowed role", model.RoleAdmin, []model.Role{model.RoleAdmin}, http.StatusOK},
		{"one of several", model.RoleManager, []model.Role{model.RoleAdmin, model.RoleManager}, http.StatusOK},
		{"disallowed role", model.RoleUser, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"missing role", nil, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"wrong type", "admin", []model.Role{model.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set(CtxRole, tc.role)
			}

			next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
			require.NoError(t, RequireRole(tc.allowed...)(next)(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

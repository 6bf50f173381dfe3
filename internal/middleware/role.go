package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles. It assumes Authenticate already ran
// and stored the role claim in context; a missing or disallowed role is
// rejected with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Insufficient permissions"})
			}
			return next(c)
		}
	}
}

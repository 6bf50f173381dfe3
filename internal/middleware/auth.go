package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/auth"
)

// Context keys set by Authenticate for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// Authenticate returns an Echo middleware that validates a Bearer access
// token and injects the embedded identity into the request context. It is
// the sole admission gate for protected routes: absent header, malformed
// token, bad signature or elapsed expiry all short-circuit with 401 and the
// downstream handler is never invoked. Verification is stateless; no
// database lookup happens per request, so a deactivated user's still-valid
// access token keeps authorizing until it expires.
func Authenticate(accessSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			ident, err := auth.Verify(accessSecret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired token"})
			}

			c.Set(CtxUserID, ident.UserID)
			c.Set(CtxEmail, ident.Email)
			c.Set(CtxRole, ident.Role)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id set by Authenticate. The empty
// string means the middleware did not run on this route.
func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}

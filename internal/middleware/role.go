package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the given roles.  The roles correspond to the values
// stored in the JWT "role" claim (ADMIN or MEMBER).  Requests with a
// missing or disallowed role are rejected with 403 Forbidden.  It assumes
// JWTAuth has already stored the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

package middleware

// identity.go defines helpers shared across middleware files. It provides
// the user identity string used by rate-limit keys: the numeric user_id
// placed in context by JWTAuth, or "anon" for unauthenticated requests.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable string identity for the requesting user.
// JWTAuth stores user_id as int64; anything else means the request did not
// pass authentication.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case int64:
		if v > 0 {
			return strconv.FormatInt(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}

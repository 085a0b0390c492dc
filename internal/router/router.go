package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/estudiofit/studio-booking/internal/handler"
	"github.com/estudiofit/studio-booking/internal/middleware"
	"github.com/estudiofit/studio-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes. Unauthenticated token
// operations live under /v1/auth; the profile endpoint lives under /v1
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access reuses it and
	// only mints a new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one), so it stays outside the JWT
	// middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin, model.RoleMember))
	auth.GET("/me", a.Me)
}

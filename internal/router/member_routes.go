package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/handler"
	"github.com/estudiofit/studio-booking/internal/middleware"
	"github.com/estudiofit/studio-booking/internal/model"
)

// RegisterMember registers member-scoped endpoints under /v1. All routes
// require a valid JWT; the schedule browse endpoint is also open to
// admins so the front desk can use the same view. cacheMW, when non-nil,
// wraps the read-heavy schedule listing with the Redis response cache.
func RegisterMember(e *echo.Echo, m *handler.MemberHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	browse := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
	)
	if cacheMW != nil {
		browse.GET("/schedule", m.ListSchedule, cacheMW)
	} else {
		browse.GET("/schedule", m.ListSchedule)
	}

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember),
	)
	g.GET("/my-reservations", m.ListMyReservations)
	g.GET("/my-schedule", m.MySchedule)
	g.GET("/my-plan", m.MyPlan)
	g.POST("/sessions/:id/book", m.Book)
	g.POST("/sessions/:id/waitlist", m.JoinWaitlist)
	g.DELETE("/sessions/:id/waitlist", m.LeaveWaitlist)
	g.DELETE("/reservations/:id", m.CancelReservation)
}

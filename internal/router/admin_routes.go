package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/handler"
	"github.com/estudiofit/studio-booking/internal/middleware"
	"github.com/estudiofit/studio-booking/internal/model"
)

// RegisterAdmin registers staff endpoints under /v1/admin. All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Weekly slots ----
	g.POST("/slots", a.CreateSlot)
	g.GET("/slots", a.ListSlots)
	g.PATCH("/slots/:id", a.UpdateSlotCapacity)
	g.DELETE("/slots/:id", a.DeactivateSlot)

	// ---- Month windows and materialization ----
	g.GET("/windows", a.ListWindows)
	g.PUT("/windows/:year/:month", a.SetWindow)
	g.POST("/windows/:year/:month/materialize", a.Materialize)

	// ---- Sessions ----
	g.GET("/sessions", a.ListSessions)
	g.DELETE("/sessions/:id", a.CancelSession)
	g.PATCH("/sessions/:id", a.UpdateSessionCapacity)
	g.GET("/sessions/:id/roster", a.SessionRoster)

	// ---- Members, plans and fixed schedules ----
	g.GET("/members", a.ListMembers)
	g.GET("/members/:id/plan", a.GetMemberPlan)
	g.PUT("/members/:id/plan", a.PutMemberPlan)
	g.GET("/members/:id/assignments", a.GetMemberAssignments)
	g.PUT("/members/:id/assignments", a.PutMemberAssignments)

	// ---- Reconciliation and diagnostics ----
	g.POST("/members/:id/sync", a.SyncMember)
	g.POST("/sync", a.SyncAll)
	g.GET("/members/:id/diagnose", a.DiagnoseMember)
	g.POST("/repair/overbooking", a.RepairOverbooking)
}

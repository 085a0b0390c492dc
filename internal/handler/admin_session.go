package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/queue"
	"github.com/estudiofit/studio-booking/internal/repository"
)

// ListSessions handles GET /v1/admin/sessions?from=&to= with the same
// range semantics as the member schedule view.
func (h *AdminHandler) ListSessions(c echo.Context) error {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 60)
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		until = t
	}
	items, err := h.Sessions.ListUpcoming(c.Request().Context(), from, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelSession handles DELETE /v1/admin/sessions/:id. All active
// reservations on the session are cancelled with it and the affected
// members are published to the broker for notification.
func (h *AdminHandler) CancelSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()

	session, err := h.Schedule.Session(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}

	affected, err := h.Sessions.Cancel(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	if h.Events != nil {
		_ = h.Events.PublishSessionCancelled(ctx, queue.SessionCancelledEvent{
			SessionID:       id,
			Date:            session.Date.Format("2006-01-02"),
			TimeOfDay:       session.TimeOfDay,
			Modality:        string(session.Modality),
			AffectedUserIDs: affected,
			CancelledAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": id, "affected_members": len(affected)})
}

type sessionCapacityReq struct {
	Capacity int `json:"capacity" validate:"required,min=1"`
}

// UpdateSessionCapacity handles PATCH /v1/admin/sessions/:id. Lowering
// the capacity below the current booking count is allowed; the overflow
// is resolved by the repair endpoint, never silently.
func (h *AdminHandler) UpdateSessionCapacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req sessionCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if err := h.Sessions.UpdateCapacity(c.Request().Context(), id, req.Capacity); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": id, "capacity": req.Capacity})
}

// SessionRoster handles GET /v1/admin/sessions/:id/roster. It returns the
// booked members and the waitlist in promotion order.
func (h *AdminHandler) SessionRoster(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Schedule.Session(ctx, id); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	roster, err := h.Sessions.Roster(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	waitlist, err := h.Waitlist.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"roster": roster, "waitlist": waitlist})
}

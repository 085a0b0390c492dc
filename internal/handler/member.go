package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/queue"
	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/schedule"
	queue_publisher "github.com/estudiofit/studio-booking/internal/service"
)

// MemberHandler groups the dependencies for member-facing endpoints:
// browsing the class schedule, booking and cancelling, waitlists, and
// viewing the member's own plan and fixed weekly schedule. All methods
// assume JWT authentication and role validation has already happened.
type MemberHandler struct {
	Sessions     *repository.SessionRepo
	Reservations *repository.ReservationRepo
	Waitlist     *repository.WaitlistRepo
	Assignments  *repository.AssignmentRepo
	Plans        *repository.PlanRepo
	Schedule     *schedule.Service
	Events       *queue_publisher.Publisher
}

// NewMemberHandler constructs a MemberHandler and panics if a required
// dependency is nil. Events may be nil when no broker is configured.
func NewMemberHandler(sessions *repository.SessionRepo, reservations *repository.ReservationRepo, waitlist *repository.WaitlistRepo, assignments *repository.AssignmentRepo, plans *repository.PlanRepo, svc *schedule.Service, events *queue_publisher.Publisher) *MemberHandler {
	if sessions == nil || reservations == nil || waitlist == nil || assignments == nil || plans == nil || svc == nil {
		panic("nil dependency passed to NewMemberHandler")
	}
	return &MemberHandler{
		Sessions:     sessions,
		Reservations: reservations,
		Waitlist:     waitlist,
		Assignments:  assignments,
		Plans:        plans,
		Schedule:     svc,
		Events:       events,
	}
}

// ListSchedule handles GET /v1/schedule. It returns upcoming sessions
// with live booked and waitlist counts. Optional from/to query params
// (YYYY-MM-DD) bound the range; the default is the next 60 days.
func (h *MemberHandler) ListSchedule(c echo.Context) error {
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
	if until.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}

	items, err := h.Sessions.ListUpcoming(c.Request().Context(), from, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMyReservations handles GET /v1/my-reservations. Cancelled rows are
// included only with ?include_cancelled=true.
func (h *MemberHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	withCancelled := c.QueryParam("include_cancelled") == "true"
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	items, err := h.Reservations.ListByUser(c.Request().Context(), userID, from, withCancelled)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type bookReq struct {
	Makeup       bool `json:"makeup"`
	JoinWaitlist bool `json:"join_waitlist"`
}

// Book handles POST /v1/sessions/:id/book. A full session returns 409
// unless join_waitlist is set, in which case the member is queued and the
// response reports waitlisted=true.
func (h *MemberHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, waitlisted, err := h.Schedule.Book(c.Request().Context(), userID, sessionID, req.Makeup, req.JoinWaitlist)
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, schedule.ErrWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking window for that month is closed"})
	case errors.Is(err, schedule.ErrAlreadyBooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already booked on this session"})
	case errors.Is(err, schedule.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session is full"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	if waitlisted {
		return c.JSON(http.StatusAccepted, echo.Map{"waitlisted": true, "session_id": sessionID})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"session_id":     res.SessionID,
		"makeup":         res.Makeup,
	})
}

// CancelReservation handles DELETE /v1/reservations/:id. Cancelling frees
// the seat and promotes the head of the session's waitlist, if any. Both
// outcomes are published to the broker.
func (h *MemberHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	cancelled, promoted, err := h.Schedule.Cancel(ctx, userID, reservationID)
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, schedule.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if h.Events != nil {
		_ = h.Events.PublishReservationCancelled(ctx, queue.ReservationCancelledEvent{
			ReservationID: reservationID,
			UserID:        userID,
			SessionID:     cancelled.SessionID,
			CancelledAt:   now,
		})
		if promoted != nil {
			session, err := h.Schedule.Session(ctx, promoted.SessionID)
			ev := queue.WaitlistPromotedEvent{
				ReservationID: promoted.Reservation.ID,
				UserID:        promoted.UserID,
				SessionID:     promoted.SessionID,
				PromotedAt:    now,
			}
			if err == nil {
				ev.Date = session.Date.Format("2006-01-02")
				ev.TimeOfDay = session.TimeOfDay
				ev.Modality = string(session.Modality)
			}
			_ = h.Events.PublishWaitlistPromoted(ctx, ev)
		}
	}

	resp := echo.Map{"cancelled": reservationID}
	if promoted != nil {
		resp["promoted_user_id"] = promoted.UserID
	}
	return c.JSON(http.StatusOK, resp)
}

// JoinWaitlist handles POST /v1/sessions/:id/waitlist. Joining the
// waitlist of a session with a free seat just books the seat.
func (h *MemberHandler) JoinWaitlist(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	res, waitlisted, err := h.Schedule.Book(c.Request().Context(), userID, sessionID, false, true)
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, schedule.ErrWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking window for that month is closed"})
	case errors.Is(err, schedule.ErrAlreadyBooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already booked on this session"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "waitlist join failed"})
	}
	if waitlisted {
		return c.JSON(http.StatusAccepted, echo.Map{"waitlisted": true, "session_id": sessionID})
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation_id": res.ID, "session_id": sessionID})
}

// LeaveWaitlist handles DELETE /v1/sessions/:id/waitlist.
func (h *MemberHandler) LeaveWaitlist(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if err := h.Waitlist.Leave(c.Request().Context(), userID, sessionID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not on the waitlist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MySchedule handles GET /v1/my-schedule and returns the member's active
// fixed weekly assignments with slot details.
func (h *MemberHandler) MySchedule(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Assignments.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MyPlan handles GET /v1/my-plan.
func (h *MemberHandler) MyPlan(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	plan, err := h.Plans.GetByUser(c.Request().Context(), userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no plan assigned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, plan)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/estudiofit/studio-booking/internal/queue"
	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/schedule"
)

// ListMembers handles GET /v1/admin/members.
func (h *AdminHandler) ListMembers(c echo.Context) error {
	items, err := h.Users.ListMembers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMemberPlan handles GET /v1/admin/members/:id/plan.
func (h *AdminHandler) GetMemberPlan(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
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

type putPlanReq struct {
	PlanType     string `json:"plan_type" validate:"required,oneof=focus reduced hybrid special"`
	FocusQuota   int    `json:"focus_quota" validate:"min=0"`
	ReducedQuota int    `json:"reduced_quota" validate:"min=0"`
}

// PutMemberPlan handles PUT /v1/admin/members/:id/plan and upserts the
// member's contracted plan.
func (h *AdminHandler) PutMemberPlan(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	var req putPlanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_type must be focus, reduced, hybrid or special; quotas must be non-negative"})
	}
	plan, err := h.Plans.Upsert(c.Request().Context(), userID, req.PlanType, req.FocusQuota, req.ReducedQuota)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save plan failed"})
	}
	return c.JSON(http.StatusOK, plan)
}

// GetMemberAssignments handles GET /v1/admin/members/:id/assignments.
func (h *AdminHandler) GetMemberAssignments(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	items, err := h.Assignments.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type putAssignmentsReq struct {
	SlotIDs []int64 `json:"slot_ids"`
}

// PutMemberAssignments handles PUT /v1/admin/members/:id/assignments. The
// request replaces the member's fixed weekly schedule wholesale and then
// reconciles their reservations against it, so the response carries the
// reconciliation result.
func (h *AdminHandler) PutMemberAssignments(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	var req putAssignmentsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	if err := h.Assignments.ReplaceForUser(ctx, userID, req.SlotIDs); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "one or more slot_ids do not name an active slot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "replace assignments failed"})
	}

	result, err := h.syncOne(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assignments saved but sync failed"})
	}
	return c.JSON(http.StatusOK, syncResponse(userID, result))
}

// SyncMember handles POST /v1/admin/members/:id/sync and reconciles one
// member's reservations against their fixed schedule.
func (h *AdminHandler) SyncMember(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	result, err := h.syncOne(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed"})
	}
	return c.JSON(http.StatusOK, syncResponse(userID, result))
}

// SyncAll handles POST /v1/admin/sync. It runs the reconciler for every
// member sequentially; one member's failure does not abort the batch.
func (h *AdminHandler) SyncAll(c echo.Context) error {
	ctx := c.Request().Context()
	members, err := h.Users.ListMembers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type memberResult struct {
		UserID   int64  `json:"user_id"`
		Created  int    `json:"created"`
		Deleted  int    `json:"deleted"`
		Warnings int    `json:"warnings"`
		Error    string `json:"error,omitempty"`
	}
	results := make([]memberResult, 0, len(members))
	failed := 0
	for _, m := range members {
		res, err := h.syncOne(ctx, m.ID)
		mr := memberResult{UserID: m.ID}
		if err != nil {
			mr.Error = "sync failed"
			failed++
			h.Log.Error("member sync failed", zap.Int64("user_id", m.ID), zap.Error(err))
		} else {
			mr.Created = len(res.Created)
			mr.Deleted = len(res.Deleted)
			mr.Warnings = len(res.Warnings)
		}
		results = append(results, mr)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": results, "failed": failed})
}

// syncOne runs the reconciler for a member and publishes the outcome.
func (h *AdminHandler) syncOne(ctx context.Context, userID int64) (schedule.Result, error) {
	result, err := h.Schedule.SyncUser(ctx, userID, schedule.SyncOptions{WaitlistOnFull: true})
	if err != nil {
		return schedule.Result{}, err
	}
	if h.Events != nil {
		_ = h.Events.PublishScheduleSynced(ctx, queue.ScheduleSyncedEvent{
			RunID:    uuid.NewString(),
			UserID:   userID,
			Created:  len(result.Created),
			Deleted:  len(result.Deleted),
			Warnings: len(result.Warnings),
			SyncedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return result, nil
}

// syncResponse flattens a reconciliation result for the API.
func syncResponse(userID int64, result schedule.Result) echo.Map {
	created := make([]echo.Map, 0, len(result.Created))
	for _, r := range result.Created {
		created = append(created, echo.Map{
			"reservation_id": r.ID,
			"session_id":     r.SessionID,
		})
	}
	warnings := make([]echo.Map, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		m := echo.Map{"kind": string(w.Kind), "message": w.Message}
		if w.SlotID != 0 {
			m["slot_id"] = w.SlotID
		}
		if w.SessionID != 0 {
			m["session_id"] = w.SessionID
		}
		if w.Waitlisted {
			m["waitlisted"] = true
		}
		warnings = append(warnings, m)
	}
	return echo.Map{
		"user_id":  userID,
		"created":  created,
		"deleted":  result.Deleted,
		"warnings": warnings,
	}
}

// DiagnoseMember handles GET /v1/admin/members/:id/diagnose. It reports
// schedule holes without changing anything.
func (h *AdminHandler) DiagnoseMember(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	report, err := h.Schedule.Inspect(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inspect failed"})
	}
	return c.JSON(http.StatusOK, report)
}

// RepairOverbooking handles POST /v1/admin/repair/overbooking. Evicted
// members are moved to the waitlist of the affected session.
func (h *AdminHandler) RepairOverbooking(c echo.Context) error {
	repaired, err := h.Schedule.TrimOverbooked(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repair failed"})
	}
	out := make([]echo.Map, 0, len(repaired))
	for _, s := range repaired {
		evicted := make([]int64, 0, len(s.Evicted))
		for _, r := range s.Evicted {
			evicted = append(evicted, r.UserID)
		}
		out = append(out, echo.Map{
			"session_id":       s.SessionID,
			"capacity":         s.Capacity,
			"active":           s.Active,
			"evicted_user_ids": evicted,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"repaired": out})
}

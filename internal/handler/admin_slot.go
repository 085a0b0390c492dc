package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/schedule"
)

type createSlotReq struct {
	DayOfWeek   int    `json:"day_of_week" validate:"required,min=1,max=7"`
	TimeOfDay   string `json:"time_of_day" validate:"required"`
	Modality    string `json:"modality" validate:"required,oneof=focus reduced"`
	MaxCapacity int    `json:"max_capacity" validate:"required,min=1"`
}

// CreateSlot handles POST /v1/admin/slots and adds a weekly slot template.
func (h *AdminHandler) CreateSlot(c echo.Context) error {
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_of_week 1-7, time_of_day, modality and max_capacity required"})
	}
	tod, err := schedule.NormalizeTimeOfDay(req.TimeOfDay)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_of_day must be HH:MM"})
	}

	slot, err := h.Slots.Create(c.Request().Context(), schedule.Weekday(req.DayOfWeek), tod, schedule.Modality(req.Modality), req.MaxCapacity)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	return c.JSON(http.StatusCreated, slot)
}

// ListSlots handles GET /v1/admin/slots. Pass ?active=true to hide
// deactivated templates.
func (h *AdminHandler) ListSlots(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	items, err := h.Slots.List(c.Request().Context(), activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type slotCapacityReq struct {
	MaxCapacity int `json:"max_capacity" validate:"required,min=1"`
}

// UpdateSlotCapacity handles PATCH /v1/admin/slots/:id. The new capacity
// applies to future materializations; existing sessions are unchanged.
func (h *AdminHandler) UpdateSlotCapacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req slotCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_capacity must be positive"})
	}
	if err := h.Slots.UpdateCapacity(c.Request().Context(), id, req.MaxCapacity); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	slot, err := h.Slots.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, slot)
}

// DeactivateSlot handles DELETE /v1/admin/slots/:id. A slot with active
// member assignments cannot be deactivated; reassign those members first.
func (h *AdminHandler) DeactivateSlot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Slots.Deactivate(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot has active assignments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

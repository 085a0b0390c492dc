package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// monthKeyFromPath parses the :year/:month path parameters.
func monthKeyFromPath(c echo.Context) (schedule.MonthKey, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		return schedule.MonthKey{}, errors.New("invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return schedule.MonthKey{}, errors.New("invalid month")
	}
	return schedule.MonthKey{Year: year, Month: time.Month(month)}, nil
}

// ListWindows handles GET /v1/admin/windows.
func (h *AdminHandler) ListWindows(c echo.Context) error {
	items, err := h.Windows.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type setWindowReq struct {
	Open bool `json:"open"`
}

// SetWindow handles PUT /v1/admin/windows/:year/:month. It opens or
// closes the booking window for a month, creating the row if needed.
func (h *AdminHandler) SetWindow(c echo.Context) error {
	key, err := monthKeyFromPath(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req setWindowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	win, err := h.Windows.SetOpen(c.Request().Context(), key.Year, key.Month, req.Open)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, win)
}

type materializeReq struct {
	Exclude []string `json:"exclude"` // YYYY-MM-DD holidays to skip
}

// Materialize handles POST /v1/admin/windows/:year/:month/materialize.
// It generates the month's sessions from the active weekly slots. The
// operation is idempotent; re-running skips already-existing sessions.
func (h *AdminHandler) Materialize(c echo.Context) error {
	key, err := monthKeyFromPath(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req materializeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	exclude := make([]time.Time, 0, len(req.Exclude))
	for _, s := range req.Exclude {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "exclude dates must be YYYY-MM-DD"})
		}
		exclude = append(exclude, d)
	}

	report, err := h.Schedule.MaterializeMonth(c.Request().Context(), key, exclude)
	if err != nil {
		if errors.Is(err, schedule.ErrWindowClosed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "month window is not open"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "materialize failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"year":             report.Month.Year,
		"month":            int(report.Month.Month),
		"created":          report.Created,
		"skipped_existing": report.SkippedExisting,
		"skipped_excluded": report.SkippedExcluded,
	})
}

package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // pagination parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"      // booking status parsing
	"github.com/iliyamo/studyroom-seat-reservation/internal/repository" // repository layer
)

// ListBookings handles GET /v1/admin/bookings.  Every filter is an
// optional query parameter: status, room_id, from, to, limit, offset.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	var f repository.BookingFilter

	if s := c.QueryParam("status"); s != "" {
		status, ok := model.ParseBookingStatus(s)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status: " + s})
		}
		f.Status = status
	}
	if id, ok := queryID(c, "room_id"); ok {
		f.RoomID = id
	}
	if s := c.QueryParam("from"); s != "" {
		t, ok := parseInstant(s)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC 3339"})
		}
		f.From = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, ok := parseInstant(s)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC 3339"})
		}
		f.To = t
	}
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	items, err := h.Bookings.ListFiltered(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Stats handles GET /v1/admin/stats.  It aggregates the booking counts
// per status, per-room usage over the last 30 days and the students
// with the most no-show violations.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	byStatus, err := h.Bookings.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	since := h.Clock.Now().AddDate(0, 0, -30)
	usage, err := h.Bookings.UsageByRoom(ctx, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	violators, err := h.Users.TopViolators(ctx, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type violatorView struct {
		UserID         uint64 `json:"user_id"`
		StudentID      string `json:"student_id"`
		Username       string `json:"username"`
		ViolationCount int    `json:"violation_count"`
	}
	vout := make([]violatorView, 0, len(violators))
	for _, v := range violators {
		vout = append(vout, violatorView{UserID: v.ID, StudentID: v.StudentID, Username: v.Username, ViolationCount: v.ViolationCount})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"by_status":     byStatus,
		"room_usage":    usage,
		"top_violators": vout,
	})
}

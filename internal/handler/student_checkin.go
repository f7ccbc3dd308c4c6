package handler

import (
	"errors"   // errors.Is comparisons against lifecycle sentinels
	"net/http" // HTTP status codes
	"strings"  // code normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/lifecycle" // transition guard sentinels
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"   // booking engine
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"     // sentinel errors
)

type checkInReq struct {
	Code string `json:"code"`
}

// EligibleCheckIns handles GET /v1/checkin/eligible and lists the
// user's confirmed bookings currently inside their check-in window.
func (h *StudentHandler) EligibleCheckIns(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListCheckInEligible(c.Request().Context(), userID, h.Clock.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// CheckIn handles POST /v1/bookings/:id/checkin.  The body carries the
// verification code displayed inside the room.  The window guard runs
// before the code comparison, so a request outside the window reports
// the timing problem even when the code is wrong.
func (h *StudentHandler) CheckIn(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	booking, err := h.Checkins.CheckIn(c.Request().Context(), userID, bookingID, code)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"booking": booking})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, service.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, lifecycle.ErrNotConfirmed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting check-in"})
	case errors.Is(err, lifecycle.ErrTooEarly):
		return c.JSON(http.StatusConflict, echo.Map{"error": "too early, check-in opens 15 minutes before start"})
	case errors.Is(err, lifecycle.ErrWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "check-in window has closed"})
	case errors.Is(err, service.ErrInvalidCode):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "verification code is incorrect"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
}

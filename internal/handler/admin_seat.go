package handler

import (
	"net/http" // HTTP status codes
	"strings"  // seat number normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/model" // domain types
	"github.com/iliyamo/studyroom-seat-reservation/internal/store" // sentinel errors
)

type addSeatsReq struct {
	Seats []struct {
		SeatNumber     string `json:"seat_number"`
		HasPowerOutlet bool   `json:"has_power_outlet"`
	} `json:"seats"`
}

// AddSeats handles POST /v1/admin/rooms/:id/seats and inserts a batch
// of seats in one statement.  Duplicate seat numbers within the room
// are rejected by the unique index.
func (h *AdminHandler) AddSeats(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req addSeatsReq
	if err := c.Bind(&req); err != nil || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Rooms.ByID(ctx, roomID); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seats := make([]model.Seat, 0, len(req.Seats))
	seen := make(map[string]struct{}, len(req.Seats))
	for _, s := range req.Seats {
		num := strings.ToUpper(strings.TrimSpace(s.SeatNumber))
		if num == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number must not be empty"})
		}
		if _, dup := seen[num]; dup {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat_number in request: " + num})
		}
		seen[num] = struct{}{}
		seats = append(seats, model.Seat{SeatNumber: num, HasPowerOutlet: s.HasPowerOutlet, IsActive: true})
	}

	if err := h.Seats.CreateBulk(ctx, roomID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seats failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(seats)})
}

type seatToggleReq struct {
	Value *bool `json:"value"`
}

// SetSeatActive handles PATCH /v1/admin/seats/:id/active.  Deactivating
// a seat hides it from search and blocks new bookings; existing
// bookings are untouched.
func (h *AdminHandler) SetSeatActive(c echo.Context) error {
	return h.toggleSeat(c, func(id uint64, v bool) error {
		return h.Seats.SetActive(c.Request().Context(), id, v)
	})
}

// SetSeatPowerOutlet handles PATCH /v1/admin/seats/:id/power_outlet.
func (h *AdminHandler) SetSeatPowerOutlet(c echo.Context) error {
	return h.toggleSeat(c, func(id uint64, v bool) error {
		return h.Seats.SetPowerOutlet(c.Request().Context(), id, v)
	})
}

func (h *AdminHandler) toggleSeat(c echo.Context, apply func(uint64, bool) error) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req seatToggleReq
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value is required"})
	}
	if err := apply(id, *req.Value); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update seat failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

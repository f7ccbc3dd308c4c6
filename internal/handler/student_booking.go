package handler

import (
	"context"  // detached context for the async queue publish
	"errors"   // errors.Is comparisons against service sentinels
	"log"      // reporting publish failures
	"net/http" // HTTP status codes
	"strings"  // query parameter normalization
	"time"     // day boundary computation

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"      // injected time source
	"github.com/iliyamo/studyroom-seat-reservation/internal/lifecycle"  // transition guard sentinels
	"github.com/iliyamo/studyroom-seat-reservation/internal/queue"      // booking.confirmed events
	"github.com/iliyamo/studyroom-seat-reservation/internal/repository" // repository layer
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"    // booking engine
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"      // sentinel errors
)

// StudentHandler groups the booking engine and repositories needed for
// the student-facing endpoints: availability search, booking creation,
// cancellation and personal listings.  JWT authentication and the
// STUDENT role check run in middleware before any of these methods.
type StudentHandler struct {
	Reservations *service.ReservationService
	Checkins     *service.CheckInService
	Bookings     *repository.BookingRepo
	Rooms        *repository.RoomRepo
	Seats        *repository.SeatRepo
	Users        *repository.UserRepo
	Clock        clock.Clock
}

func NewStudentHandler(res *service.ReservationService, chk *service.CheckInService, b *repository.BookingRepo, rooms *repository.RoomRepo, seats *repository.SeatRepo, users *repository.UserRepo, clk clock.Clock) *StudentHandler {
	if res == nil || chk == nil || b == nil || rooms == nil || seats == nil || users == nil {
		panic("nil dependency passed to NewStudentHandler")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &StudentHandler{Reservations: res, Checkins: chk, Bookings: b, Rooms: rooms, Seats: seats, Users: users, Clock: clk}
}

// availabilityRow is one seat in a search result.
type availabilityRow struct {
	seatView
	Available bool `json:"available"`
}

// SearchSeats handles GET /v1/search?room_id=&start=&end=.  It returns
// every active seat of the room with a per-seat availability flag for
// the requested interval.  An optional power_outlet=true filter keeps
// only seats with an outlet.
func (h *StudentHandler) SearchSeats(c echo.Context) error {
	roomID, ok := queryID(c, "room_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	start, ok := parseInstant(c.QueryParam("start"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be RFC 3339"})
	}
	end, ok := parseInstant(c.QueryParam("end"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be RFC 3339"})
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
	}
	outletOnly := strings.EqualFold(c.QueryParam("power_outlet"), "true")

	ctx := c.Request().Context()
	room, err := h.Rooms.ByID(ctx, roomID)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !room.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	seats, err := h.Seats.ListByRoom(ctx, roomID, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rows := make([]availabilityRow, 0, len(seats))
	for _, s := range seats {
		if outletOnly && !s.HasPowerOutlet {
			continue
		}
		avail, err := h.Reservations.IsAvailable(ctx, s, start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		rows = append(rows, availabilityRow{seatView: toSeatView(s), Available: avail})
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomView(room), "seats": rows})
}

type createBookingReq struct {
	SeatID    uint64 `json:"seat_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateBooking handles POST /v1/bookings.  Validation and conflict
// detection live in the reservation service; this handler only maps
// sentinel errors to HTTP statuses and emits the confirmation event.
func (h *StudentHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id, start_time and end_time are required"})
	}
	start, ok := parseInstant(req.StartTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
	}
	end, ok := parseInstant(req.EndTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be RFC 3339"})
	}

	ctx := c.Request().Context()
	booking, err := h.Reservations.CreateBooking(ctx, userID, req.SeatID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInterval), errors.Is(err, service.ErrDurationTooLong):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrRoomClosed):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		case errors.Is(err, store.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is already booked for that interval"})
		case errors.Is(err, store.ErrUserConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a booking in that interval"})
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	h.publishConfirmed(userID, booking.ID, req.SeatID, start, end, booking.BookingTime)

	return c.JSON(http.StatusCreated, echo.Map{"booking": booking})
}

// publishConfirmed assembles and publishes the booking.confirmed event
// in the background.  The booking is already committed, so failures
// here are logged and never surfaced to the client.
func (h *StudentHandler) publishConfirmed(userID, bookingID, seatID uint64, start, end, bookedAt time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		seat, err := h.Seats.ByID(ctx, seatID)
		if err != nil {
			log.Printf("handler: booking %d event skipped, seat lookup: %v", bookingID, err)
			return
		}
		room, err := h.Rooms.ByID(ctx, seat.RoomID)
		if err != nil {
			log.Printf("handler: booking %d event skipped, room lookup: %v", bookingID, err)
			return
		}
		user, err := h.Users.ByID(ctx, userID)
		if err != nil {
			log.Printf("handler: booking %d event skipped, user lookup: %v", bookingID, err)
			return
		}
		_ = queue.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:  bookingID,
			UserID:     userID,
			StudentID:  user.StudentID,
			RoomName:   room.Name,
			Building:   room.Building,
			SeatNumber: seat.SeatNumber,
			StartsAt:   start.Format(time.RFC3339),
			EndsAt:     end.Format(time.RFC3339),
			BookedAt:   bookedAt.UTC().Format(time.RFC3339),
		})
	}()
}

// ListActive handles GET /v1/bookings and returns the user's bookings
// that are still pending or in progress.
func (h *StudentHandler) ListActive(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	dayStart := h.Clock.Now().Truncate(24 * time.Hour)
	items, err := h.Bookings.ListActiveByUser(c.Request().Context(), userID, dayStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// ListHistory handles GET /v1/bookings/history with the last 30 days of
// finished bookings.
func (h *StudentHandler) ListHistory(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	dayStart := h.Clock.Now().Truncate(24 * time.Hour)
	items, err := h.Bookings.ListHistoryByUser(c.Request().Context(), userID, dayStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *StudentHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	err = h.Checkins.Cancel(c.Request().Context(), userID, bookingID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, service.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, lifecycle.ErrNotCancellable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be cancelled"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
}

// Favorites handles GET /v1/favorites with the user's most-booked seats
// over the last 30 days.
func (h *StudentHandler) Favorites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.FavoriteSeats(c.Request().Context(), userID, h.Clock.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorites": items})
}

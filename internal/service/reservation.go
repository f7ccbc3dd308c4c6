// Package service holds the booking-domain operations that sit between
// the HTTP handlers and the store: reservation creation, check-in,
// cancellation and verification-code issuance.  Services depend on the
// store interfaces and a clock, never on echo or *sql.DB, so every rule
// in here is unit-testable with in-memory fakes.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

var (
	// ErrInvalidInterval rejects a request whose end does not lie
	// strictly after its start.
	ErrInvalidInterval = errors.New("end time must be after start time")
	// ErrDurationTooLong rejects a request exceeding the per-booking
	// duration cap.
	ErrDurationTooLong = errors.New("booking exceeds the maximum duration")
	// ErrRoomClosed rejects a request not fully covered by the room's
	// opening window.
	ErrRoomClosed = errors.New("room is closed during the requested interval")
)

// ReservationService validates booking requests and creates bookings.
type ReservationService struct {
	rooms    store.RoomStore
	seats    store.SeatStore
	bookings store.BookingStore
	clk      clock.Clock
	maxHours int
}

// NewReservationService wires the service.  maxHours is the per-booking
// duration cap (MAX_BOOKING_HOURS).
func NewReservationService(rooms store.RoomStore, seats store.SeatStore, bookings store.BookingStore, clk clock.Clock, maxHours int) *ReservationService {
	if rooms == nil || seats == nil || bookings == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if maxHours <= 0 {
		maxHours = 4
	}
	return &ReservationService{rooms: rooms, seats: seats, bookings: bookings, clk: clk, maxHours: maxHours}
}

// IsAvailable reports whether the seat can be booked for [start, end):
// the seat is active and no confirmed/checked-in booking overlaps the
// interval.  Pure read; the creation path re-verifies under a
// transaction before inserting.
func (s *ReservationService) IsAvailable(ctx context.Context, seat model.Seat, start, end time.Time) (bool, error) {
	if !seat.IsActive {
		return false, nil
	}
	n, err := s.seats.CountOverlapping(ctx, seat.ID, start, end)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CreateBooking validates the request and persists a confirmed booking.
// Checks run in a fixed order and the first failure wins:
//
//  1. interval sanity and the duration cap
//  2. seat exists, is active and is available      -> ErrSeatConflict
//  3. the user holds no overlapping booking        -> ErrUserConflict
//  4. the room is open across the whole interval   -> ErrRoomClosed
//
// The store's Create re-verifies both conflicts inside one transaction,
// so two concurrent requests for the same seat cannot both succeed.
func (s *ReservationService) CreateBooking(ctx context.Context, userID, seatID uint64, start, end time.Time) (model.Booking, error) {
	now := s.clk.Now()

	if !end.After(start) {
		return model.Booking{}, ErrInvalidInterval
	}
	if end.Sub(start) > time.Duration(s.maxHours)*time.Hour {
		return model.Booking{}, ErrDurationTooLong
	}

	seat, err := s.seats.ByID(ctx, seatID)
	if err != nil {
		return model.Booking{}, err
	}
	ok, err := s.IsAvailable(ctx, seat, start, end)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, store.ErrSeatConflict
	}

	n, err := s.bookings.CountUserOverlapping(ctx, userID, start, end)
	if err != nil {
		return model.Booking{}, err
	}
	if n > 0 {
		return model.Booking{}, store.ErrUserConflict
	}

	room, err := s.rooms.ByID(ctx, seat.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	if !roomOpenAcross(room, start, end) {
		return model.Booking{}, ErrRoomClosed
	}

	b := model.Booking{
		UserID:      userID,
		SeatID:      seatID,
		StartTime:   start,
		EndTime:     end,
		Status:      model.BookingConfirmed,
		BookingTime: now,
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// roomOpenAcross checks every hour boundary within [start, end] against
// the room's opening window, the end instant included so a booking
// cannot run past closing.  Bookings are hour-granular, so covering the
// boundaries covers the interval.
func roomOpenAcross(room model.StudyRoom, start, end time.Time) bool {
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		if !room.IsOpenAt(t) {
			return false
		}
	}
	return room.IsOpenAt(end)
}

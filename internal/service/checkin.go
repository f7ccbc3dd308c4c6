package service

import (
	"context"
	"errors"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/lifecycle"
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

var (
	// ErrNotOwner is returned when the booking belongs to another user.
	ErrNotOwner = errors.New("booking belongs to another user")
	// ErrInvalidCode rejects a check-in whose submitted code does not
	// equal the room's current verification code.  The booking is left
	// untouched; the user may retry with the correct code.
	ErrInvalidCode = errors.New("verification code is incorrect")
)

// CheckInService validates and applies check-ins and cancellations on
// behalf of the booking owner.
type CheckInService struct {
	rooms    store.RoomStore
	seats    store.SeatStore
	bookings store.BookingStore
	clk      clock.Clock
}

func NewCheckInService(rooms store.RoomStore, seats store.SeatStore, bookings store.BookingStore, clk clock.Clock) *CheckInService {
	if rooms == nil || seats == nil || bookings == nil || clk == nil {
		panic("nil dependency passed to NewCheckInService")
	}
	return &CheckInService{rooms: rooms, seats: seats, bookings: bookings, clk: clk}
}

// CheckIn transitions the booking to checked_in when the caller owns
// it, the current time lies inside the ±15 minute window around its
// start, and the submitted code equals the current verification code of
// the room owning the booked seat.  Window errors come from the
// lifecycle package (ErrTooEarly, ErrWindowClosed, ErrNotConfirmed).
func (s *CheckInService) CheckIn(ctx context.Context, userID, bookingID uint64, code string) (model.Booking, error) {
	now := s.clk.Now()

	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrNotOwner
	}

	// Window guard first: an expired window is reported as such even
	// when the code is also wrong.
	next, err := lifecycle.CheckIn(b, now)
	if err != nil {
		return model.Booking{}, err
	}

	seat, err := s.seats.ByID(ctx, b.SeatID)
	if err != nil {
		return model.Booking{}, err
	}
	room, err := s.rooms.ByID(ctx, seat.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	if room.VerifyCode == nil || code == "" || *room.VerifyCode != code {
		return model.Booking{}, ErrInvalidCode
	}

	applied, err := s.bookings.MarkCheckedIn(ctx, b.ID, now)
	if err != nil {
		return model.Booking{}, err
	}
	if !applied {
		// lost a race with the expiry sweep or a concurrent check-in
		return model.Booking{}, lifecycle.ErrNotConfirmed
	}
	return next, nil
}

// Cancel transitions an owned booking to cancelled.  Permitted from
// confirmed and checked_in; terminal states yield ErrNotCancellable.
func (s *CheckInService) Cancel(ctx context.Context, userID, bookingID uint64) error {
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotOwner
	}
	if _, err := lifecycle.Cancel(b); err != nil {
		return err
	}
	applied, err := s.bookings.MarkCancelled(ctx, b.ID)
	if err != nil {
		return err
	}
	if !applied {
		return lifecycle.ErrNotCancellable
	}
	return nil
}

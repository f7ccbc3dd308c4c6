// Package store declares the persistence contracts consumed by the
// reservation service and the reconciliation scheduler.  The MySQL
// implementations live in internal/repository; tests substitute
// in-memory fakes.  Keeping the scheduler behind these interfaces is a
// deliberate departure from the usual handler-owns-*sql.DB shape: the
// sweeps must be unit-testable without a live database or ticker.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
)

var (
	// ErrNotFound is the shared missing-row sentinel for every store.
	ErrNotFound = errors.New("record not found")
	// ErrSeatConflict means the seat already has a confirmed or
	// checked-in booking overlapping the requested interval.
	ErrSeatConflict = errors.New("seat is already booked for this interval")
	// ErrUserConflict means the user already holds an overlapping
	// booking on some seat.
	ErrUserConflict = errors.New("user already has a booking in this interval")
)

// RoomStore provides the room reads and the code write used by the
// services and the scheduler.
type RoomStore interface {
	ByID(ctx context.Context, id uint64) (model.StudyRoom, error)
	ListActive(ctx context.Context) ([]model.StudyRoom, error)
	// UpdateVerifyCode atomically replaces the room's check-in code,
	// invalidating the previous one.
	UpdateVerifyCode(ctx context.Context, roomID uint64, code string, issuedAt time.Time) error
}

// SeatStore provides seat reads and the seat-interval overlap count
// backing the availability check.
type SeatStore interface {
	ByID(ctx context.Context, id uint64) (model.Seat, error)
	// CountOverlapping returns how many bookings on the seat with
	// status confirmed or checked_in overlap [start, end), using the
	// half-open overlap test a.start < b.end AND b.start < a.end.
	CountOverlapping(ctx context.Context, seatID uint64, start, end time.Time) (int, error)
}

// BookingDetail joins a booking with the context needed to notify its
// owner without further queries: recipient identity plus room and seat
// labels for the message body.
type BookingDetail struct {
	Booking    model.Booking `json:"booking"`
	UserEmail  string        `json:"-"`
	Username   string        `json:"username"`
	RoomID     uint64        `json:"room_id"`
	RoomName   string        `json:"room_name"`
	SeatNumber string        `json:"seat_number"`
}

// BookingStore provides booking reads, the atomic creation path and the
// conditional lifecycle transitions.  Every Mark* method applies its
// transition only when the row is still in the required source state
// and reports whether a row actually changed, which makes re-running a
// sweep after a partial failure safe.
type BookingStore interface {
	ByID(ctx context.Context, id uint64) (model.Booking, error)

	// Create inserts the booking after re-verifying inside one
	// transaction that neither the seat nor the user has an
	// overlapping confirmed/checked-in booking.  On conflict it
	// returns ErrSeatConflict or ErrUserConflict and inserts nothing.
	Create(ctx context.Context, b *model.Booking) error

	// CountUserOverlapping counts confirmed/checked-in bookings by the
	// user, on any seat, overlapping [start, end).
	CountUserOverlapping(ctx context.Context, userID uint64, start, end time.Time) (int, error)

	MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id uint64) (bool, error)
	MarkCompleted(ctx context.Context, id uint64) (bool, error)
	// MarkExpired also increments the owning user's violation counter
	// in the same transaction, so the counter moves exactly once per
	// booking no matter how often the sweep retries.
	MarkExpired(ctx context.Context, id uint64) (bool, error)

	// Sweep queries.  All of them are restricted to status=confirmed
	// except ListCompletionCandidates (status=checked_in, end <= now).
	ListUpcoming(ctx context.Context, now time.Time) ([]BookingDetail, error)            // start in (now, now+15m]
	ListLate(ctx context.Context, now time.Time) ([]BookingDetail, error)                // start in [now-15m, now-10m)
	ListExpiryCandidates(ctx context.Context, now time.Time) ([]BookingDetail, error)    // start < now-15m
	ListCompletionCandidates(ctx context.Context, now time.Time) ([]model.Booking, error)
}

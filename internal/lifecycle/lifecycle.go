// Package lifecycle implements the booking state machine as pure
// functions over a Booking value.  Transitions return the updated copy
// and leave persistence to the caller, so the same rules drive the HTTP
// handlers, the reconciliation scheduler and the tests without a store.
//
// States: confirmed → checked_in → completed, confirmed → cancelled,
// confirmed → expired.  cancelled, completed and expired are terminal.
package lifecycle

import (
	"errors"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
)

// CheckInGrace is the symmetric window around a booking's start during
// which check-in is accepted.  Arriving early is tolerated up to the
// same margin as arriving late.
const CheckInGrace = 15 * time.Minute

var (
	// ErrNotConfirmed is returned when a transition requires the
	// confirmed state and the booking has already left it.
	ErrNotConfirmed = errors.New("booking is not in confirmed state")
	// ErrTooEarly rejects a check-in before start-15m.
	ErrTooEarly = errors.New("check-in window has not opened yet")
	// ErrWindowClosed rejects a check-in after start+15m.
	ErrWindowClosed = errors.New("check-in window has closed")
	// ErrNotCancellable is returned when cancelling a terminal booking.
	ErrNotCancellable = errors.New("booking can no longer be cancelled")
	// ErrNotCheckedIn is returned when completing a booking that never
	// checked in.
	ErrNotCheckedIn = errors.New("booking is not checked in")
	// ErrNotFinished is returned when completing before the end time.
	ErrNotFinished = errors.New("booking has not reached its end time")
	// ErrNotExpired is returned when expiring a booking whose no-show
	// window has not elapsed.
	ErrNotExpired = errors.New("booking is not past its check-in window")
)

// CanCheckIn reports whether a check-in at now would be accepted:
// the booking is confirmed and now lies inside the closed interval
// [start-15m, start+15m].
func CanCheckIn(b model.Booking, now time.Time) bool {
	if b.Status != model.BookingConfirmed {
		return false
	}
	return !now.Before(b.StartTime.Add(-CheckInGrace)) && !now.After(b.StartTime.Add(CheckInGrace))
}

// IsExpired reports whether the booking missed its check-in window:
// still confirmed and now is strictly past start+15m.  The boundary
// instant start+15m itself is not expired yet, keeping it disjoint from
// the late-reminder band.
func IsExpired(b model.Booking, now time.Time) bool {
	return b.Status == model.BookingConfirmed && now.After(b.StartTime.Add(CheckInGrace))
}

// IsActive reports whether the booking currently occupies its seat:
// confirmed or checked in, with now inside [start, end].
func IsActive(b model.Booking, now time.Time) bool {
	if b.Status != model.BookingConfirmed && b.Status != model.BookingCheckedIn {
		return false
	}
	return !now.Before(b.StartTime) && !now.After(b.EndTime)
}

// CheckIn transitions confirmed → checked_in and records the check-in
// instant.  The window guard distinguishes "too early" from "closed" so
// callers can surface an accurate rejection.
func CheckIn(b model.Booking, now time.Time) (model.Booking, error) {
	if b.Status != model.BookingConfirmed {
		return b, ErrNotConfirmed
	}
	if now.Before(b.StartTime.Add(-CheckInGrace)) {
		return b, ErrTooEarly
	}
	if now.After(b.StartTime.Add(CheckInGrace)) {
		return b, ErrWindowClosed
	}
	b.Status = model.BookingCheckedIn
	t := now
	b.CheckinTime = &t
	return b, nil
}

// Cancel transitions confirmed or checked_in → cancelled.  No violation
// is recorded on this path.
func Cancel(b model.Booking) (model.Booking, error) {
	if b.Status != model.BookingConfirmed && b.Status != model.BookingCheckedIn {
		return b, ErrNotCancellable
	}
	b.Status = model.BookingCancelled
	return b, nil
}

// Complete transitions checked_in → completed once the reserved
// interval has elapsed.
func Complete(b model.Booking, now time.Time) (model.Booking, error) {
	if b.Status != model.BookingCheckedIn {
		return b, ErrNotCheckedIn
	}
	if now.Before(b.EndTime) {
		return b, ErrNotFinished
	}
	b.Status = model.BookingCompleted
	return b, nil
}

// Expire transitions confirmed → expired after the check-in window has
// passed.  The caller is responsible for recording the owner's
// violation exactly once alongside the persisted transition.
func Expire(b model.Booking, now time.Time) (model.Booking, error) {
	if !IsExpired(b, now) {
		if b.Status != model.BookingConfirmed {
			return b, ErrNotConfirmed
		}
		return b, ErrNotExpired
	}
	b.Status = model.BookingExpired
	return b, nil
}

package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  The
// three terminal states (cancelled, completed, expired) are never left
// and no transition re-enters confirmed.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingExpired   BookingStatus = "expired"
)

// ParseBookingStatus validates a raw status string coming from request
// parameters or the database.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingConfirmed, BookingCheckedIn, BookingCancelled, BookingCompleted, BookingExpired:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether the status can never change again.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingExpired
}

// Booking is a reservation of one seat for a half-open time interval
// [StartTime, EndTime).  Bookings are created confirmed and are mutated
// exclusively through the lifecycle transitions; they are kept forever
// for history and statistics, never deleted.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – student who made the booking.
//  SeatID      – seat being reserved.
//  StartTime   – start of the reserved interval (inclusive).
//  EndTime     – end of the reserved interval (exclusive).
//  Status      – current lifecycle state.
//  BookingTime – when the booking was created.
//  CheckinTime – when the student checked in (null until then).
type Booking struct {
	ID          uint64        `json:"id"`
	UserID      uint64        `json:"user_id"`
	SeatID      uint64        `json:"seat_id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      BookingStatus `json:"status"`
	BookingTime time.Time     `json:"booking_time"`
	CheckinTime *time.Time    `json:"checkin_time,omitempty"`
}

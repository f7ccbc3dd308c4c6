// Package queue defines the message payloads exchanged over the
// broker, the publisher used by the booking path and the background
// consumer that writes the confirmation audit log.
package queue

// BookingConfirmedEvent is published when a seat booking is
// successfully created.  It carries enough context for downstream
// consumers to log or notify without querying the primary database.
type BookingConfirmedEvent struct {
	EventID    string `json:"event_id"`
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	StudentID  string `json:"student_id"`
	RoomName   string `json:"room"`
	Building   string `json:"building"`
	SeatNumber string `json:"seat"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	BookedAt   string `json:"booked_at"`
}

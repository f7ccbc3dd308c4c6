package model

import "time"

// Seat describes a physical seat inside a study room.  Seats are
// identified by their room and a label such as "A12".  Inactive seats
// are invisible to availability checks and can never be booked.
//
// Fields:
//  ID             – primary key identifier.
//  RoomID         – study room this seat belongs to.
//  SeatNumber     – label printed on the desk (unique within the room).
//  HasPowerOutlet – whether a power outlet is within reach.
//  IsActive       – whether the seat may be booked.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Seat struct {
	ID             uint64    // seats.id
	RoomID         uint64    // seats.room_id
	SeatNumber     string    // seats.seat_number
	HasPowerOutlet bool      // seats.has_power_outlet
	IsActive       bool      // seats.is_active
	CreatedAt      time.Time // seats.created_at
	UpdatedAt      time.Time // seats.updated_at
}

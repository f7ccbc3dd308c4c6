package model

import (
	"fmt"
	"time"
)

// StudyRoom represents a bookable study room as stored in the
// `study_rooms` table.  A room owns a collection of seats and carries
// its daily opening window.  The verification code is rotated once per
// day by the scheduler (or on demand by an admin) and is required to
// check in to any seat inside the room.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the room.
//  Building     – building the room is located in.
//  Floor        – floor number inside the building.
//  Capacity     – number of seats the room is planned for.
//  OpenTime     – daily opening instant as "HH:MM:SS" (study_rooms.open_time, TIME).
//  CloseTime    – daily closing instant as "HH:MM:SS" (study_rooms.close_time, TIME).
//  Is24H        – when true the opening window is ignored entirely.
//  IsActive     – inactive rooms are hidden and never open.
//  VerifyCode   – current check-in code (nil until first issued).
//  CodeIssuedAt – when the current code was issued (nil until first issued).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type StudyRoom struct {
	ID           uint64     // study_rooms.id
	Name         string     // study_rooms.name
	Building     string     // study_rooms.building
	Floor        int        // study_rooms.floor
	Capacity     int        // study_rooms.capacity
	OpenTime     string     // study_rooms.open_time
	CloseTime    string     // study_rooms.close_time
	Is24H        bool       // study_rooms.is_24h
	IsActive     bool       // study_rooms.is_active
	VerifyCode   *string    // study_rooms.verify_code (nullable)
	CodeIssuedAt *time.Time // study_rooms.code_issued_at (nullable)
	CreatedAt    time.Time  // study_rooms.created_at
	UpdatedAt    time.Time  // study_rooms.updated_at
}

// IsOpenAt reports whether the room admits occupants at the given
// instant.  Inactive rooms are never open, 24-hour rooms always are.
// Otherwise the instant's time of day must fall inside the closed
// interval [OpenTime, CloseTime].  Malformed stored times close the
// room rather than opening it.
func (r StudyRoom) IsOpenAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.Is24H {
		return true
	}
	open, okOpen := parseClockTime(r.OpenTime)
	closeAt, okClose := parseClockTime(r.CloseTime)
	if !okOpen || !okClose {
		return false
	}
	tod := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return tod >= open && tod <= closeAt
}

// parseClockTime converts a "HH:MM:SS" (or "HH:MM") string into seconds
// since midnight.  MySQL TIME columns scan into the long form; request
// input may use the short one.
func parseClockTime(s string) (int, bool) {
	if len(s) == 5 {
		s += ":00"
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}

package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// memStore is an in-memory implementation of store.RoomStore,
// store.SeatStore and store.BookingStore.  A single mutex makes Create
// atomic, mirroring the transactional re-check of the MySQL
// implementation.
type memStore struct {
	mu         sync.Mutex
	rooms      map[uint64]model.StudyRoom
	seats      map[uint64]model.Seat
	bookings   map[uint64]model.Booking
	violations map[uint64]int
	nextID     uint64
}

func newMemStore() *memStore {
	return &memStore{
		rooms:      map[uint64]model.StudyRoom{},
		seats:      map[uint64]model.Seat{},
		bookings:   map[uint64]model.Booking{},
		violations: map[uint64]int{},
	}
}

func (m *memStore) addRoom(r model.StudyRoom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

func (m *memStore) addSeat(s model.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[s.ID] = s
}

func (m *memStore) addBooking(b model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		m.nextID++
		b.ID = m.nextID
	}
	m.bookings[b.ID] = b
}

func (m *memStore) booking(id uint64) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

// ---- store.RoomStore ----

func (m *memStore) ByID(ctx context.Context, id uint64) (model.StudyRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return model.StudyRoom{}, store.ErrNotFound
	}
	return r, nil
}

func (m *memStore) ListActive(ctx context.Context) ([]model.StudyRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudyRoom
	for _, r := range m.rooms {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) UpdateVerifyCode(ctx context.Context, roomID uint64, code string, issuedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return store.ErrNotFound
	}
	r.VerifyCode = &code
	r.CodeIssuedAt = &issuedAt
	m.rooms[roomID] = r
	return nil
}

// seatStore wraps memStore so the same struct can satisfy both ByID
// signatures.
type seatStore struct{ *memStore }

func (m seatStore) ByID(ctx context.Context, id uint64) (model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return model.Seat{}, store.ErrNotFound
	}
	return s, nil
}

func (m seatStore) CountOverlapping(ctx context.Context, seatID uint64, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countSeatOverlapLocked(seatID, start, end), nil
}

func (m *memStore) countSeatOverlapLocked(seatID uint64, start, end time.Time) int {
	n := 0
	for _, b := range m.bookings {
		if b.SeatID == seatID && blocking(b) && overlaps(b, start, end) {
			n++
		}
	}
	return n
}

func (m *memStore) countUserOverlapLocked(userID uint64, start, end time.Time) int {
	n := 0
	for _, b := range m.bookings {
		if b.UserID == userID && blocking(b) && overlaps(b, start, end) {
			n++
		}
	}
	return n
}

func blocking(b model.Booking) bool {
	return b.Status == model.BookingConfirmed || b.Status == model.BookingCheckedIn
}

func overlaps(b model.Booking, start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// bookingStore wraps memStore to expose the booking ByID.
type bookingStore struct{ *memStore }

func (m bookingStore) ByID(ctx context.Context, id uint64) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (m bookingStore) Create(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countSeatOverlapLocked(b.SeatID, b.StartTime, b.EndTime) > 0 {
		return store.ErrSeatConflict
	}
	if m.countUserOverlapLocked(b.UserID, b.StartTime, b.EndTime) > 0 {
		return store.ErrUserConflict
	}
	m.nextID++
	b.ID = m.nextID
	m.bookings[b.ID] = *b
	return nil
}

func (m bookingStore) CountUserOverlapping(ctx context.Context, userID uint64, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countUserOverlapLocked(userID, start, end), nil
}

func (m bookingStore) MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error) {
	return m.transition(id, model.BookingConfirmed, func(b *model.Booking) {
		b.Status = model.BookingCheckedIn
		t := at
		b.CheckinTime = &t
	})
}

func (m bookingStore) MarkCancelled(ctx context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || !blocking(b) {
		return false, nil
	}
	b.Status = model.BookingCancelled
	m.bookings[id] = b
	return true, nil
}

func (m bookingStore) MarkCompleted(ctx context.Context, id uint64) (bool, error) {
	return m.transition(id, model.BookingCheckedIn, func(b *model.Booking) {
		b.Status = model.BookingCompleted
	})
}

func (m bookingStore) MarkExpired(ctx context.Context, id uint64) (bool, error) {
	return m.transition(id, model.BookingConfirmed, func(b *model.Booking) {
		b.Status = model.BookingExpired
		m.violations[b.UserID]++
	})
}

func (m bookingStore) transition(id uint64, from model.BookingStatus, apply func(*model.Booking)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	apply(&b)
	m.bookings[id] = b
	return true, nil
}

func (m bookingStore) ListUpcoming(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return m.listConfirmed(func(b model.Booking) bool {
		return b.StartTime.After(now) && !b.StartTime.After(now.Add(15*time.Minute))
	}), nil
}

func (m bookingStore) ListLate(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return m.listConfirmed(func(b model.Booking) bool {
		return !b.StartTime.Before(now.Add(-15*time.Minute)) && b.StartTime.Before(now.Add(-10*time.Minute))
	}), nil
}

func (m bookingStore) ListExpiryCandidates(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return m.listConfirmed(func(b model.Booking) bool {
		return b.StartTime.Before(now.Add(-15 * time.Minute))
	}), nil
}

func (m bookingStore) ListCompletionCandidates(ctx context.Context, now time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.Status == model.BookingCheckedIn && !b.EndTime.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) listConfirmed(match func(model.Booking) bool) []store.BookingDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.BookingDetail
	for _, b := range m.bookings {
		if b.Status == model.BookingConfirmed && match(b) {
			out = append(out, store.BookingDetail{Booking: b})
		}
	}
	return out
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// fixture builds a store with one open room (08:00-22:00) and two
// active seats, plus a service against a frozen clock.
func fixture(t *testing.T) (*memStore, *service.ReservationService, *clock.Frozen) {
	t.Helper()
	m := newMemStore()
	m.addRoom(model.StudyRoom{
		ID: 1, Name: "Quiet Room", Building: "Library", Capacity: 20,
		OpenTime: "08:00:00", CloseTime: "22:00:00", IsActive: true,
	})
	m.addSeat(model.Seat{ID: 10, RoomID: 1, SeatNumber: "A1", IsActive: true})
	m.addSeat(model.Seat{ID: 11, RoomID: 1, SeatNumber: "A2", IsActive: true})

	clk := &clock.Frozen{Current: testNow}
	svc := service.NewReservationService(m, seatStore{m}, bookingStore{m}, clk, 4)
	return m, svc, clk
}

func TestCreateBooking(t *testing.T) {
	_, svc, _ := fixture(t)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	b, err := svc.CreateBooking(context.Background(), 7, 10, start, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("booking ID not assigned")
	}
	if b.Status != model.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}
	if !b.BookingTime.Equal(testNow) {
		t.Fatalf("booking time = %v, want %v", b.BookingTime, testNow)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	_, svc, _ := fixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		seatID  uint64
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"end equals start", 10, start, start, service.ErrInvalidInterval},
		{"end before start", 10, start, start.Add(-time.Hour), service.ErrInvalidInterval},
		{"over the duration cap", 10, start, start.Add(5 * time.Hour), service.ErrDurationTooLong},
		{"unknown seat", 999, start, start.Add(time.Hour), store.ErrNotFound},
		{"outside opening hours", 10, time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC), service.ErrRoomClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, 7, tc.seatID, tc.start, tc.end)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateBookingCapAtExactlyMax(t *testing.T) {
	_, svc, _ := fixture(t)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if _, err := svc.CreateBooking(context.Background(), 7, 10, start, start.Add(4*time.Hour)); err != nil {
		t.Fatalf("4h booking rejected: %v", err)
	}
}

func TestCreateBookingSeatConflict(t *testing.T) {
	m, svc, _ := fixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	m.addBooking(model.Booking{
		UserID: 1, SeatID: 10, StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.BookingConfirmed,
	})

	// Overlapping interval on the same seat is rejected.
	if _, err := svc.CreateBooking(ctx, 7, 10, start.Add(time.Hour), start.Add(3*time.Hour)); !errors.Is(err, store.ErrSeatConflict) {
		t.Fatalf("err = %v, want ErrSeatConflict", err)
	}
	// Back-to-back is fine: intervals are half-open.
	if _, err := svc.CreateBooking(ctx, 7, 10, start.Add(2*time.Hour), start.Add(3*time.Hour)); err != nil {
		t.Fatalf("adjacent booking rejected: %v", err)
	}
}

func TestCreateBookingUserConflict(t *testing.T) {
	m, svc, _ := fixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	m.addBooking(model.Booking{
		UserID: 7, SeatID: 11, StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.BookingConfirmed,
	})

	// Same user, different seat, overlapping time.
	if _, err := svc.CreateBooking(ctx, 7, 10, start, start.Add(time.Hour)); !errors.Is(err, store.ErrUserConflict) {
		t.Fatalf("err = %v, want ErrUserConflict", err)
	}
	// A different user can take the free seat.
	if _, err := svc.CreateBooking(ctx, 8, 10, start, start.Add(time.Hour)); err != nil {
		t.Fatalf("other user's booking rejected: %v", err)
	}
}

func TestCreateBookingCancelledFreesSeat(t *testing.T) {
	m, svc, _ := fixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	m.addBooking(model.Booking{
		ID: 50, UserID: 1, SeatID: 10, StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.BookingCancelled,
	})
	if _, err := svc.CreateBooking(ctx, 7, 10, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("seat with only a cancelled booking rejected: %v", err)
	}
}

func TestCreateBookingInactiveSeat(t *testing.T) {
	m, svc, _ := fixture(t)
	m.addSeat(model.Seat{ID: 12, RoomID: 1, SeatNumber: "A3", IsActive: false})

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if _, err := svc.CreateBooking(context.Background(), 7, 12, start, start.Add(time.Hour)); !errors.Is(err, store.ErrSeatConflict) {
		t.Fatalf("err = %v, want ErrSeatConflict", err)
	}
}

func TestCreateBooking24HRoomIgnoresHours(t *testing.T) {
	m, svc, _ := fixture(t)
	m.addRoom(model.StudyRoom{ID: 2, Name: "All Night", Building: "Dorm", Is24H: true, IsActive: true})
	m.addSeat(model.Seat{ID: 20, RoomID: 2, SeatNumber: "B1", IsActive: true})

	start := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	if _, err := svc.CreateBooking(context.Background(), 7, 20, start, start.Add(3*time.Hour)); err != nil {
		t.Fatalf("overnight booking in 24h room rejected: %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	m, svc, _ := fixture(t)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), uint64(100+i), 10, start, start.Add(2*time.Hour))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, store.ErrSeatConflict) {
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}

	n := 0
	for _, b := range m.bookings {
		if b.SeatID == 10 && b.Status == model.BookingConfirmed {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("stored confirmed bookings = %d, want 1", n)
	}
}

func TestIsAvailable(t *testing.T) {
	m, svc, _ := fixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	seat, _ := seatStore{m}.ByID(ctx, 10)
	ok, err := svc.IsAvailable(ctx, seat, start, start.Add(time.Hour))
	if err != nil || !ok {
		t.Fatalf("fresh seat: ok=%v err=%v", ok, err)
	}

	m.addBooking(model.Booking{
		UserID: 1, SeatID: 10, StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.BookingCheckedIn,
	})
	ok, err = svc.IsAvailable(ctx, seat, start, start.Add(time.Hour))
	if err != nil || ok {
		t.Fatalf("occupied seat: ok=%v err=%v", ok, err)
	}
}

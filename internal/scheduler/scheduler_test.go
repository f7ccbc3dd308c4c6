package scheduler_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/scheduler"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// fakeBookings implements store.BookingStore over a slice, with the
// same boundary semantics as the SQL queries.
type fakeBookings struct {
	items      map[uint64]model.Booking
	violations map[uint64]int
	failExpire map[uint64]error // MarkExpired overrides per booking
}

func newFakeBookings(bs ...model.Booking) *fakeBookings {
	f := &fakeBookings{
		items:      map[uint64]model.Booking{},
		violations: map[uint64]int{},
		failExpire: map[uint64]error{},
	}
	for _, b := range bs {
		f.items[b.ID] = b
	}
	return f
}

func (f *fakeBookings) ByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, ok := f.items[id]
	if !ok {
		return model.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) Create(ctx context.Context, b *model.Booking) error { panic("not used") }

func (f *fakeBookings) CountUserOverlapping(ctx context.Context, userID uint64, start, end time.Time) (int, error) {
	panic("not used")
}

func (f *fakeBookings) MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error) {
	panic("not used")
}

func (f *fakeBookings) MarkCancelled(ctx context.Context, id uint64) (bool, error) {
	panic("not used")
}

func (f *fakeBookings) MarkCompleted(ctx context.Context, id uint64) (bool, error) {
	b, ok := f.items[id]
	if !ok || b.Status != model.BookingCheckedIn {
		return false, nil
	}
	b.Status = model.BookingCompleted
	f.items[id] = b
	return true, nil
}

func (f *fakeBookings) MarkExpired(ctx context.Context, id uint64) (bool, error) {
	if err := f.failExpire[id]; err != nil {
		return false, err
	}
	b, ok := f.items[id]
	if !ok || b.Status != model.BookingConfirmed {
		return false, nil
	}
	b.Status = model.BookingExpired
	f.items[id] = b
	f.violations[b.UserID]++
	return true, nil
}

func (f *fakeBookings) ListUpcoming(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return f.confirmed(func(b model.Booking) bool {
		return b.StartTime.After(now) && !b.StartTime.After(now.Add(15*time.Minute))
	}), nil
}

func (f *fakeBookings) ListLate(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return f.confirmed(func(b model.Booking) bool {
		return !b.StartTime.Before(now.Add(-15*time.Minute)) && b.StartTime.Before(now.Add(-10*time.Minute))
	}), nil
}

func (f *fakeBookings) ListExpiryCandidates(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return f.confirmed(func(b model.Booking) bool {
		return b.StartTime.Before(now.Add(-15 * time.Minute))
	}), nil
}

func (f *fakeBookings) ListCompletionCandidates(ctx context.Context, now time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.items {
		if b.Status == model.BookingCheckedIn && !b.EndTime.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) confirmed(match func(model.Booking) bool) []store.BookingDetail {
	var out []store.BookingDetail
	for _, b := range f.items {
		if b.Status == model.BookingConfirmed && match(b) {
			out = append(out, store.BookingDetail{
				Booking:    b,
				UserEmail:  "student@example.edu",
				Username:   "student",
				RoomName:   "Quiet Room",
				SeatNumber: "A1",
			})
		}
	}
	return out
}

// fakeRooms implements store.RoomStore.
type fakeRooms struct {
	rooms map[uint64]model.StudyRoom
}

func (f *fakeRooms) ByID(ctx context.Context, id uint64) (model.StudyRoom, error) {
	r, ok := f.rooms[id]
	if !ok {
		return model.StudyRoom{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeRooms) ListActive(ctx context.Context) ([]model.StudyRoom, error) {
	var out []model.StudyRoom
	for _, r := range f.rooms {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRooms) UpdateVerifyCode(ctx context.Context, roomID uint64, code string, issuedAt time.Time) error {
	r, ok := f.rooms[roomID]
	if !ok {
		return store.ErrNotFound
	}
	r.VerifyCode = &code
	r.CodeIssuedAt = &issuedAt
	f.rooms[roomID] = r
	return nil
}

// fakeIssuer records which rooms got codes and can fail selectively.
type fakeIssuer struct {
	issued []uint64
	fail   map[uint64]error
}

func (f *fakeIssuer) IssueCode(ctx context.Context, roomID uint64) (string, error) {
	if err := f.fail[roomID]; err != nil {
		return "", err
	}
	f.issued = append(f.issued, roomID)
	return "ABC123", nil
}

// captureNotifier records sends and can fail on chosen recipients.
type captureNotifier struct {
	sent     []sentMail
	failNext int
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (n *captureNotifier) Send(toEmail, toName, subject, body string) error {
	if n.failNext > 0 {
		n.failNext--
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, sentMail{to: toEmail, subject: subject, body: body})
	return nil
}

var sweepNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newScheduler(b *fakeBookings, rooms *fakeRooms, issuer *fakeIssuer, n *captureNotifier) (*scheduler.Scheduler, *clock.Frozen) {
	if rooms == nil {
		rooms = &fakeRooms{rooms: map[uint64]model.StudyRoom{}}
	}
	if issuer == nil {
		issuer = &fakeIssuer{}
	}
	if n == nil {
		n = &captureNotifier{}
	}
	clk := &clock.Frozen{Current: sweepNow}
	return scheduler.New(b, rooms, issuer, n, clk), clk
}

func confirmedStarting(id uint64, start time.Time) model.Booking {
	return model.Booking{
		ID: id, UserID: id * 10, SeatID: 1,
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status: model.BookingConfirmed,
	}
}

func TestSweepExpiry(t *testing.T) {
	missed := confirmedStarting(1, sweepNow.Add(-30*time.Minute))
	fresh := confirmedStarting(2, sweepNow.Add(-5*time.Minute))
	b := newFakeBookings(missed, fresh)
	n := &captureNotifier{}
	s, _ := newScheduler(b, nil, nil, n)

	s.SweepExpiry(context.Background())

	if got := b.items[1].Status; got != model.BookingExpired {
		t.Fatalf("missed booking status = %s, want expired", got)
	}
	if got := b.items[2].Status; got != model.BookingConfirmed {
		t.Fatalf("in-window booking status = %s, want confirmed", got)
	}
	if b.violations[10] != 1 {
		t.Fatalf("violations = %d, want 1", b.violations[10])
	}
	if len(n.sent) != 1 || !strings.Contains(n.sent[0].subject, "Booking cancelled") {
		t.Fatalf("notifications = %+v, want one cancellation notice", n.sent)
	}
}

func TestSweepExpiryIdempotent(t *testing.T) {
	b := newFakeBookings(confirmedStarting(1, sweepNow.Add(-time.Hour)))
	n := &captureNotifier{}
	s, _ := newScheduler(b, nil, nil, n)

	s.SweepExpiry(context.Background())
	s.SweepExpiry(context.Background())

	if b.violations[10] != 1 {
		t.Fatalf("violations after rerun = %d, want 1", b.violations[10])
	}
	if len(n.sent) != 1 {
		t.Fatalf("notifications after rerun = %d, want 1", len(n.sent))
	}
}

func TestSweepExpiryBoundaryNotExpired(t *testing.T) {
	// Exactly at start+15m the window is still open; even if the store
	// were to return it as a candidate, the sweep must skip it.
	edge := confirmedStarting(1, sweepNow.Add(-15*time.Minute))
	b := newFakeBookings(edge)
	s, _ := newScheduler(b, nil, nil, nil)

	s.SweepExpiry(context.Background())

	if got := b.items[1].Status; got != model.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed at the window boundary", got)
	}
	if b.violations[10] != 0 {
		t.Fatalf("violations = %d, want 0", b.violations[10])
	}
}

func TestSweepExpiryFailureIsolation(t *testing.T) {
	one := confirmedStarting(1, sweepNow.Add(-time.Hour))
	two := confirmedStarting(2, sweepNow.Add(-time.Hour))
	b := newFakeBookings(one, two)
	b.failExpire[1] = errors.New("deadlock")
	s, _ := newScheduler(b, nil, nil, nil)

	s.SweepExpiry(context.Background())

	if got := b.items[2].Status; got != model.BookingExpired {
		t.Fatalf("second booking status = %s, want expired despite first failing", got)
	}
	if got := b.items[1].Status; got != model.BookingConfirmed {
		t.Fatalf("failed booking status = %s, want confirmed for retry", got)
	}
}

func TestSweepCompletion(t *testing.T) {
	done := confirmedStarting(1, sweepNow.Add(-3*time.Hour))
	done.Status = model.BookingCheckedIn // ended an hour ago
	running := confirmedStarting(2, sweepNow.Add(-time.Hour))
	running.Status = model.BookingCheckedIn // ends in an hour
	b := newFakeBookings(done, running)
	s, _ := newScheduler(b, nil, nil, nil)

	s.SweepCompletion(context.Background())

	if got := b.items[1].Status; got != model.BookingCompleted {
		t.Fatalf("elapsed booking status = %s, want completed", got)
	}
	if got := b.items[2].Status; got != model.BookingCheckedIn {
		t.Fatalf("running booking status = %s, want checked_in", got)
	}
}

func TestSweepUpcomingAndLate(t *testing.T) {
	soon := confirmedStarting(1, sweepNow.Add(10*time.Minute))
	late := confirmedStarting(2, sweepNow.Add(-12*time.Minute))
	b := newFakeBookings(soon, late)
	n := &captureNotifier{}
	s, _ := newScheduler(b, nil, nil, n)

	s.SweepUpcoming(context.Background())
	s.SweepLate(context.Background())

	if len(n.sent) != 2 {
		t.Fatalf("notifications = %d, want 2", len(n.sent))
	}
	for _, mail := range n.sent {
		if !strings.HasPrefix(mail.subject, "[Study Room] ") {
			t.Fatalf("subject %q missing prefix", mail.subject)
		}
	}
	if !strings.Contains(n.sent[0].subject, "starting soon") {
		t.Fatalf("first subject = %q, want start reminder", n.sent[0].subject)
	}
	if !strings.Contains(n.sent[1].subject, "Check-in reminder") {
		t.Fatalf("second subject = %q, want late reminder", n.sent[1].subject)
	}
}

func TestSweepLateBandExcludesExpiryZone(t *testing.T) {
	tooOld := confirmedStarting(1, sweepNow.Add(-16*time.Minute))
	inBand := confirmedStarting(2, sweepNow.Add(-14*time.Minute))
	tooNew := confirmedStarting(3, sweepNow.Add(-9*time.Minute))
	b := newFakeBookings(tooOld, inBand, tooNew)
	n := &captureNotifier{}
	s, _ := newScheduler(b, nil, nil, n)

	s.SweepLate(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("notifications = %d, want only the in-band booking", len(n.sent))
	}
}

func TestNotifierFailureDoesNotStopSweep(t *testing.T) {
	a := confirmedStarting(1, sweepNow.Add(5*time.Minute))
	c := confirmedStarting(2, sweepNow.Add(5*time.Minute))
	b := newFakeBookings(a, c)
	n := &captureNotifier{failNext: 1}
	s, _ := newScheduler(b, nil, nil, n)

	s.SweepUpcoming(context.Background())

	if len(n.sent) != 1 {
		t.Fatalf("delivered = %d, want the second mail despite the first failing", len(n.sent))
	}
}

func TestRotateCodes(t *testing.T) {
	rooms := &fakeRooms{rooms: map[uint64]model.StudyRoom{
		1: {ID: 1, IsActive: true},
		2: {ID: 2, IsActive: false},
		3: {ID: 3, IsActive: true},
	}}
	issuer := &fakeIssuer{fail: map[uint64]error{1: errors.New("db down")}}
	s, _ := newScheduler(newFakeBookings(), rooms, issuer, nil)

	s.RotateCodes(context.Background())

	if len(issuer.issued) != 1 || issuer.issued[0] != 3 {
		t.Fatalf("issued = %v, want only room 3 (room 1 failed, room 2 inactive)", issuer.issued)
	}
}

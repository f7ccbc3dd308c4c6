// Package scheduler runs the recurring reconciliation sweeps that move
// bookings through time without user action: start reminders, late
// check-in reminders, no-show expiry with violation recording,
// auto-completion, and the daily verification-code rotation.
//
// Every sweep is idempotent.  The store transitions are gated on the
// current status, so a sweep that dies halfway simply reprocesses the
// leftovers on its next tick; an item's failure is logged and never
// aborts the rest of the sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/lifecycle"
	"github.com/iliyamo/studyroom-seat-reservation/internal/mailer"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// CodeIssuer is the slice of the verification-code service the
// rotation sweep needs.
type CodeIssuer interface {
	IssueCode(ctx context.Context, roomID uint64) (string, error)
}

// Scheduler owns the sweep loops.  All dependencies are injected so the
// sweeps can be driven directly in tests with a frozen clock and
// in-memory stores.
type Scheduler struct {
	Bookings store.BookingStore
	Rooms    store.RoomStore
	Codes    CodeIssuer
	Notifier mailer.Notifier
	Clock    clock.Clock

	// ReminderInterval drives the reminder+expiry loop (default 5m),
	// CompleteInterval the auto-completion loop (default 10m).  Code
	// rotation fires at the first tick after each UTC midnight.
	ReminderInterval time.Duration
	CompleteInterval time.Duration
}

// New returns a Scheduler with the reference cadences.
func New(bookings store.BookingStore, rooms store.RoomStore, codes CodeIssuer, n mailer.Notifier, clk clock.Clock) *Scheduler {
	if bookings == nil || rooms == nil || codes == nil || n == nil || clk == nil {
		panic("nil dependency passed to scheduler.New")
	}
	return &Scheduler{
		Bookings:         bookings,
		Rooms:            rooms,
		Codes:            codes,
		Notifier:         n,
		Clock:            clk,
		ReminderInterval: 5 * time.Minute,
		CompleteInterval: 10 * time.Minute,
	}
}

// Run blocks until ctx is cancelled, driving all sweeps on their
// cadences.  Rooms get fresh verification codes immediately on startup
// so check-in works before the first midnight.
func (s *Scheduler) Run(ctx context.Context) {
	s.RotateCodes(ctx)

	reminders := time.NewTicker(s.ReminderInterval)
	defer reminders.Stop()
	completion := time.NewTicker(s.CompleteInterval)
	defer completion.Stop()

	lastRotation := s.Clock.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-reminders.C:
			s.SweepUpcoming(ctx)
			s.SweepLate(ctx)
			s.SweepExpiry(ctx)
			now := s.Clock.Now()
			if calendarDay(now) != calendarDay(lastRotation) {
				s.RotateCodes(ctx)
				lastRotation = now
			}
		case <-completion.C:
			s.SweepCompletion(ctx)
		}
	}
}

// SweepUpcoming mails a "starting soon" reminder for every confirmed
// booking starting within the next 15 minutes.  Reminders are
// best-effort and may repeat on the next sweep; the cadence bounds the
// repetition.
func (s *Scheduler) SweepUpcoming(ctx context.Context) {
	now := s.Clock.Now()
	items, err := s.Bookings.ListUpcoming(ctx, now)
	if err != nil {
		log.Printf("scheduler: list upcoming bookings: %v", err)
		return
	}
	for _, d := range items {
		s.notify(d, "Booking starting soon",
			fmt.Sprintf("Your seat %s in %s is reserved from %s. Please arrive and check in on time.",
				d.SeatNumber, d.RoomName, d.Booking.StartTime.Format("15:04")))
	}
}

// SweepLate mails a last-call reminder for confirmed bookings that
// started 10 to 15 minutes ago and are about to expire.
func (s *Scheduler) SweepLate(ctx context.Context) {
	now := s.Clock.Now()
	items, err := s.Bookings.ListLate(ctx, now)
	if err != nil {
		log.Printf("scheduler: list late bookings: %v", err)
		return
	}
	for _, d := range items {
		s.notify(d, "Check-in reminder",
			fmt.Sprintf("Your booking for seat %s in %s has started. Check in now or the seat will be released shortly.",
				d.SeatNumber, d.RoomName))
	}
}

// SweepExpiry expires every confirmed booking whose check-in window has
// passed, recording one violation per booking, and mails a cancellation
// notice after the transition is durable.  This is the only path that
// increments violations.
func (s *Scheduler) SweepExpiry(ctx context.Context) {
	now := s.Clock.Now()
	items, err := s.Bookings.ListExpiryCandidates(ctx, now)
	if err != nil {
		log.Printf("scheduler: list expiry candidates: %v", err)
		return
	}
	for _, d := range items {
		if !lifecycle.IsExpired(d.Booking, now) {
			continue
		}
		applied, err := s.Bookings.MarkExpired(ctx, d.Booking.ID)
		if err != nil {
			// left for the next sweep; the status gate makes the retry safe
			log.Printf("scheduler: expire booking %d: %v", d.Booking.ID, err)
			continue
		}
		if !applied {
			continue
		}
		s.notify(d, "Booking cancelled",
			fmt.Sprintf("Your booking for seat %s in %s was cancelled because you did not check in. This counts as a violation.",
				d.SeatNumber, d.RoomName))
	}
}

// SweepCompletion completes every checked-in booking whose interval has
// elapsed.  No notification; the stay simply ended.
func (s *Scheduler) SweepCompletion(ctx context.Context) {
	now := s.Clock.Now()
	items, err := s.Bookings.ListCompletionCandidates(ctx, now)
	if err != nil {
		log.Printf("scheduler: list completion candidates: %v", err)
		return
	}
	for _, b := range items {
		if _, err := lifecycle.Complete(b, now); err != nil {
			continue
		}
		if _, err := s.Bookings.MarkCompleted(ctx, b.ID); err != nil {
			log.Printf("scheduler: complete booking %d: %v", b.ID, err)
		}
	}
}

// RotateCodes issues a fresh verification code for every active room.
// A room whose rotation fails keeps its old code until the next run.
func (s *Scheduler) RotateCodes(ctx context.Context) {
	rooms, err := s.Rooms.ListActive(ctx)
	if err != nil {
		log.Printf("scheduler: list active rooms: %v", err)
		return
	}
	for _, r := range rooms {
		if _, err := s.Codes.IssueCode(ctx, r.ID); err != nil {
			log.Printf("scheduler: rotate code for room %d: %v", r.ID, err)
		}
	}
}

// calendarDay collapses an instant to its UTC date, the once-per-day
// granularity of code rotation.
func calendarDay(t time.Time) string { return t.UTC().Format("2006-01-02") }

// notify delivers one mail, logging instead of propagating failures so
// a broken mail path cannot stall a sweep.
func (s *Scheduler) notify(d store.BookingDetail, subject, body string) {
	if err := s.Notifier.Send(d.UserEmail, d.Username, "[Study Room] "+subject, body); err != nil {
		log.Printf("scheduler: notify user %d for booking %d: %v", d.Booking.UserID, d.Booking.ID, err)
	}
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// BookingRepo provides data access to the bookings table, including the
// transactional check-then-insert creation path and the conditional
// lifecycle transition updates.  It implements store.BookingStore.
//
// A transition update never names the target state unconditionally: the
// WHERE clause pins the required source state, so replaying a sweep
// after a partial failure is a no-op on rows that already moved.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, user_id, seat_id, start_time, end_time, status, booking_time, checkin_time`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b       model.Booking
		status  string
		checkin sql.NullTime
	)
	err := row.Scan(&b.ID, &b.UserID, &b.SeatID, &b.StartTime, &b.EndTime, &status, &b.BookingTime, &checkin)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingStatus(status)
	if checkin.Valid {
		t := checkin.Time
		b.CheckinTime = &t
	}
	return b, nil
}

// ByID fetches a single booking.  Returns store.ErrNotFound when no
// row exists.
func (r *BookingRepo) ByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return model.Booking{}, store.ErrNotFound
	}
	return b, err
}

// Create inserts a new booking after re-verifying, inside one
// transaction, that neither the seat nor the user has an overlapping
// confirmed/checked-in booking.  The service performs the same checks
// beforehand for precise error ordering; this re-check under FOR UPDATE
// is what makes two concurrent requests for the same seat serialize,
// with the (seat_id, start_time) index in scripts/schema.sql as the
// final backstop.  Populates the generated ID on success.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	start, end := b.StartTime.UTC(), b.EndTime.UTC()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE seat_id = ? AND status IN ('confirmed','checked_in')
		   AND start_time < ? AND end_time > ? FOR UPDATE`,
		b.SeatID, end, start).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return store.ErrSeatConflict
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE user_id = ? AND status IN ('confirmed','checked_in')
		   AND start_time < ? AND end_time > ? FOR UPDATE`,
		b.UserID, end, start).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return store.ErrUserConflict
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, seat_id, start_time, end_time, status, booking_time)
		 VALUES (?, ?, ?, ?, 'confirmed', ?)`,
		b.UserID, b.SeatID, start, end, b.BookingTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.ID = uint64(id)
	b.Status = model.BookingConfirmed
	return nil
}

// CountUserOverlapping counts confirmed/checked-in bookings by the user
// on any seat overlapping [start, end).
func (r *BookingRepo) CountUserOverlapping(ctx context.Context, userID uint64, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE user_id = ? AND status IN ('confirmed','checked_in')
		   AND start_time < ? AND end_time > ?`,
		userID, end.UTC(), start.UTC()).Scan(&n)
	return n, err
}

// MarkCheckedIn applies confirmed → checked_in and records the check-in
// instant.  Reports whether a row changed.
func (r *BookingRepo) MarkCheckedIn(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status='checked_in', checkin_time=? WHERE id=? AND status='confirmed'`,
		at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCancelled applies {confirmed, checked_in} → cancelled.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status='cancelled' WHERE id=? AND status IN ('confirmed','checked_in')`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkCompleted applies checked_in → completed.
func (r *BookingRepo) MarkCompleted(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status='completed' WHERE id=? AND status='checked_in'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkExpired applies confirmed → expired and increments the owning
// user's violation counter in the same transaction.  Because the UPDATE
// is gated on status='confirmed', replaying it on an already-expired
// booking changes nothing and the counter moves exactly once.
func (r *BookingRepo) MarkExpired(ctx context.Context, id uint64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status='expired' WHERE id=? AND status='confirmed'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// already transitioned by an earlier sweep; nothing to record
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users u JOIN bookings b ON b.user_id = u.id
		 SET u.violation_count = u.violation_count + 1 WHERE b.id = ?`, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

const detailQuery = `SELECT b.id, b.user_id, b.seat_id, b.start_time, b.end_time, b.status, b.booking_time, b.checkin_time,
       u.email, u.username, r.id, r.name, s.seat_number
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN seats s ON s.id = b.seat_id
JOIN study_rooms r ON r.id = s.room_id
`

func (r *BookingRepo) listDetails(ctx context.Context, where string, args ...any) ([]store.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, detailQuery+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.BookingDetail
	for rows.Next() {
		var (
			d       store.BookingDetail
			status  string
			checkin sql.NullTime
		)
		if err := rows.Scan(&d.Booking.ID, &d.Booking.UserID, &d.Booking.SeatID,
			&d.Booking.StartTime, &d.Booking.EndTime, &status, &d.Booking.BookingTime, &checkin,
			&d.UserEmail, &d.Username, &d.RoomID, &d.RoomName, &d.SeatNumber); err != nil {
			return nil, err
		}
		d.Booking.Status = model.BookingStatus(status)
		if checkin.Valid {
			t := checkin.Time
			d.Booking.CheckinTime = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListUpcoming returns confirmed bookings starting within (now, now+15m],
// the "starting soon" reminder band.
func (r *BookingRepo) ListUpcoming(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	now = now.UTC()
	return r.listDetails(ctx,
		`WHERE b.status='confirmed' AND b.start_time > ? AND b.start_time <= ?`,
		now, now.Add(15*time.Minute))
}

// ListLate returns confirmed bookings whose start lies within
// [now-15m, now-10m): started but still inside the check-in window,
// with five minutes or less remaining.
func (r *BookingRepo) ListLate(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	now = now.UTC()
	return r.listDetails(ctx,
		`WHERE b.status='confirmed' AND b.start_time >= ? AND b.start_time < ?`,
		now.Add(-15*time.Minute), now.Add(-10*time.Minute))
}

// ListExpiryCandidates returns confirmed bookings whose check-in window
// has passed (start strictly before now-15m).
func (r *BookingRepo) ListExpiryCandidates(ctx context.Context, now time.Time) ([]store.BookingDetail, error) {
	return r.listDetails(ctx,
		`WHERE b.status='confirmed' AND b.start_time < ?`,
		now.UTC().Add(-15*time.Minute))
}

// ListCompletionCandidates returns checked-in bookings whose interval
// has elapsed.
func (r *BookingRepo) ListCompletionCandidates(ctx context.Context, now time.Time) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE status='checked_in' AND end_time <= ?`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListActiveByUser returns the user's confirmed/checked-in bookings
// ending today or later, soonest first.
func (r *BookingRepo) ListActiveByUser(ctx context.Context, userID uint64, dayStart time.Time) ([]store.BookingDetail, error) {
	return r.listDetails(ctx,
		`WHERE b.user_id = ? AND b.status IN ('confirmed','checked_in') AND b.end_time >= ?
		 ORDER BY b.start_time`,
		userID, dayStart.UTC())
}

// ListHistoryByUser returns the user's bookings from the last 30 days
// that are no longer active, most recent first.
func (r *BookingRepo) ListHistoryByUser(ctx context.Context, userID uint64, dayStart time.Time) ([]store.BookingDetail, error) {
	dayStart = dayStart.UTC()
	return r.listDetails(ctx,
		`WHERE b.user_id = ? AND b.end_time < ? AND b.start_time >= ?
		 ORDER BY b.start_time DESC`,
		userID, dayStart, dayStart.AddDate(0, 0, -30))
}

// ListCheckInEligible returns the user's confirmed bookings currently
// inside their check-in window.
func (r *BookingRepo) ListCheckInEligible(ctx context.Context, userID uint64, now time.Time) ([]store.BookingDetail, error) {
	now = now.UTC()
	return r.listDetails(ctx,
		`WHERE b.user_id = ? AND b.status='confirmed' AND b.start_time >= ? AND b.start_time <= ?
		 ORDER BY b.start_time`,
		userID, now.Add(-15*time.Minute), now.Add(15*time.Minute))
}

// FavoriteSeat is one row of the most-booked-seats report.
type FavoriteSeat struct {
	SeatID         uint64 `json:"seat_id"`
	SeatNumber     string `json:"seat_number"`
	RoomName       string `json:"room_name"`
	Building       string `json:"building"`
	HasPowerOutlet bool   `json:"has_power_outlet"`
	UsageCount     int    `json:"usage_count"`
}

// FavoriteSeats returns the user's ten most-booked seats over the last
// 30 days, regardless of how those bookings ended.
func (r *BookingRepo) FavoriteSeats(ctx context.Context, userID uint64, now time.Time) ([]FavoriteSeat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.seat_number, r.name, r.building, s.has_power_outlet, COUNT(b.id) AS usage_count
		 FROM bookings b
		 JOIN seats s ON s.id = b.seat_id
		 JOIN study_rooms r ON r.id = s.room_id
		 WHERE b.user_id = ? AND b.booking_time >= ?
		 GROUP BY s.id, s.seat_number, r.name, r.building, s.has_power_outlet
		 ORDER BY usage_count DESC
		 LIMIT 10`,
		userID, now.UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FavoriteSeat
	for rows.Next() {
		var f FavoriteSeat
		if err := rows.Scan(&f.SeatID, &f.SeatNumber, &f.RoomName, &f.Building, &f.HasPowerOutlet, &f.UsageCount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// BookingFilter is the explicit query shape for the admin
// booking list.  Each field is an enumerated optional filter; zero
// values mean "not filtered".
type BookingFilter struct {
	Status model.BookingStatus // exact status match
	RoomID uint64              // bookings on seats of this room
	From   time.Time           // start_time >= From
	To     time.Time           // start_time < To
	Limit  int                 // page size, defaults to 50, capped at 200
	Offset int                 // page offset
}

// ListFiltered returns bookings matching the filter, newest first.
func (r *BookingRepo) ListFiltered(ctx context.Context, f BookingFilter) ([]store.BookingDetail, error) {
	where := `WHERE 1=1`
	var args []any
	if f.Status != "" {
		where += ` AND b.status = ?`
		args = append(args, string(f.Status))
	}
	if f.RoomID != 0 {
		where += ` AND r.id = ?`
		args = append(args, f.RoomID)
	}
	if !f.From.IsZero() {
		where += ` AND b.start_time >= ?`
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where += ` AND b.start_time < ?`
		args = append(args, f.To.UTC())
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	where += ` ORDER BY b.start_time DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return r.listDetails(ctx, where, args...)
}

// CountByStatus returns booking totals grouped by status for the admin
// statistics view.
func (r *BookingRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// RoomUsage is one row of the per-room usage report.
type RoomUsage struct {
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	Building string `json:"building"`
	Bookings int    `json:"bookings"`
}

// UsageByRoom returns booking counts per room since the given instant.
func (r *BookingRepo) UsageByRoom(ctx context.Context, since time.Time) ([]RoomUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.building, COUNT(b.id)
		 FROM study_rooms r
		 LEFT JOIN seats s ON s.room_id = r.id
		 LEFT JOIN bookings b ON b.seat_id = s.id AND b.booking_time >= ?
		 GROUP BY r.id, r.name, r.building
		 ORDER BY COUNT(b.id) DESC`,
		since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RoomUsage
	for rows.Next() {
		var u RoomUsage
		if err := rows.Scan(&u.RoomID, &u.RoomName, &u.Building, &u.Bookings); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

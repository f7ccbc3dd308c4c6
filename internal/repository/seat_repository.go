package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// SeatRepo provides data access to the seats table and the
// seat-interval overlap count that backs availability checking.  It
// implements store.SeatStore.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatCols = `id, room_id, seat_number, has_power_outlet, is_active, created_at, updated_at`

// ByID fetches a single seat.  Returns store.ErrNotFound when no row
// exists.
func (r *SeatRepo) ByID(ctx context.Context, id uint64) (model.Seat, error) {
	var s model.Seat
	err := r.db.QueryRowContext(ctx,
		`SELECT `+seatCols+` FROM seats WHERE id = ?`, id).
		Scan(&s.ID, &s.RoomID, &s.SeatNumber, &s.HasPowerOutlet, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Seat{}, store.ErrNotFound
	}
	return s, err
}

// ListByRoom returns the seats of a room.  When activeOnly is set,
// inactive seats are filtered out (the public browse and search views
// never show them).
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64, activeOnly bool) ([]model.Seat, error) {
	q := `SELECT ` + seatCols + ` FROM seats WHERE room_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.SeatNumber, &s.HasPowerOutlet, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountOverlapping counts confirmed/checked-in bookings on the seat
// whose [start_time, end_time) interval overlaps [start, end).  The
// overlap test is the half-open a.start < b.end AND b.start < a.end.
func (r *SeatRepo) CountOverlapping(ctx context.Context, seatID uint64, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE seat_id = ? AND status IN ('confirmed','checked_in')
		   AND start_time < ? AND end_time > ?`,
		seatID, end.UTC(), start.UTC()).Scan(&n)
	return n, err
}

// CreateBulk inserts several seats for one room in a single statement.
// Passing an empty slice has no effect and returns nil.
func (r *SeatRepo) CreateBulk(ctx context.Context, roomID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (room_id, seat_number, has_power_outlet, is_active) VALUES `
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, roomID, s.SeatNumber, s.HasPowerOutlet, s.IsActive)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// SetActive flips the seat's active flag.  Deactivating a seat hides
// it from availability; existing bookings are untouched.
func (r *SeatRepo) SetActive(ctx context.Context, seatID uint64, active bool) error {
	return r.toggle(ctx, `UPDATE seats SET is_active=? WHERE id=?`, active, seatID)
}

// SetPowerOutlet flips the power-outlet flag.
func (r *SeatRepo) SetPowerOutlet(ctx context.Context, seatID uint64, has bool) error {
	return r.toggle(ctx, `UPDATE seats SET has_power_outlet=? WHERE id=?`, has, seatID)
}

func (r *SeatRepo) toggle(ctx context.Context, query string, val bool, seatID uint64) error {
	res, err := r.db.ExecContext(ctx, query, val, seatID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM seats WHERE id=?`, seatID).Scan(&one); err == sql.ErrNoRows {
			return store.ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

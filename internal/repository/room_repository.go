package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

// RoomRepo provides CRUD operations for study rooms.  It implements
// store.RoomStore for the parts the services and scheduler consume; the
// admin handlers use its wider surface directly.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomCols = `id, name, building, floor, capacity, open_time, close_time,
is_24h, is_active, verify_code, code_issued_at, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (model.StudyRoom, error) {
	var (
		rm       model.StudyRoom
		code     sql.NullString
		issuedAt sql.NullTime
	)
	err := row.Scan(&rm.ID, &rm.Name, &rm.Building, &rm.Floor, &rm.Capacity,
		&rm.OpenTime, &rm.CloseTime, &rm.Is24H, &rm.IsActive,
		&code, &issuedAt, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return model.StudyRoom{}, err
	}
	if code.Valid {
		v := code.String
		rm.VerifyCode = &v
	}
	if issuedAt.Valid {
		t := issuedAt.Time
		rm.CodeIssuedAt = &t
	}
	return rm, nil
}

// ByID fetches a single room.  Returns store.ErrNotFound when no row
// exists.
func (r *RoomRepo) ByID(ctx context.Context, id uint64) (model.StudyRoom, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomCols+` FROM study_rooms WHERE id = ?`, id)
	rm, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return model.StudyRoom{}, store.ErrNotFound
	}
	return rm, err
}

// ListActive returns all active rooms ordered by building and name.
// The scheduler rotates codes for exactly this set.
func (r *RoomRepo) ListActive(ctx context.Context) ([]model.StudyRoom, error) {
	return r.list(ctx, `SELECT `+roomCols+` FROM study_rooms WHERE is_active = 1 ORDER BY building, name`)
}

// ListAll returns every room regardless of the active flag, for the
// admin screens.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.StudyRoom, error) {
	return r.list(ctx, `SELECT `+roomCols+` FROM study_rooms ORDER BY building, name`)
}

func (r *RoomRepo) list(ctx context.Context, query string) ([]model.StudyRoom, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StudyRoom
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Create inserts a new room and populates the generated ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.StudyRoom) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO study_rooms (name, building, floor, capacity, open_time, close_time, is_24h, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.Name, rm.Building, rm.Floor, rm.Capacity, rm.OpenTime, rm.CloseTime, rm.Is24H, rm.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// Update rewrites the mutable room fields.  The verification code is
// not touched here; it changes only through UpdateVerifyCode.
func (r *RoomRepo) Update(ctx context.Context, rm model.StudyRoom) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE study_rooms SET name=?, building=?, floor=?, capacity=?, open_time=?, close_time=?, is_24h=?, is_active=?
		 WHERE id=?`,
		rm.Name, rm.Building, rm.Floor, rm.Capacity, rm.OpenTime, rm.CloseTime, rm.Is24H, rm.IsActive, rm.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-change update; confirm existence.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM study_rooms WHERE id=?`, rm.ID).Scan(&one); err == sql.ErrNoRows {
			return store.ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// UpdateVerifyCode atomically replaces the room's check-in code and
// records when it was issued.  The previous code becomes invalid the
// moment this statement commits.
func (r *RoomRepo) UpdateVerifyCode(ctx context.Context, roomID uint64, code string, issuedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE study_rooms SET verify_code=?, code_issued_at=? WHERE id=?`,
		code, issuedAt.UTC(), roomID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM study_rooms WHERE id=?`, roomID).Scan(&one); err == sql.ErrNoRows {
			return store.ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Buildings returns the distinct building names of active rooms, used
// to populate the search filter.
func (r *RoomRepo) Buildings(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT building FROM study_rooms WHERE is_active = 1 ORDER BY building`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

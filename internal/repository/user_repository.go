package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
	"github.com/iliyamo/studyroom-seat-reservation/internal/utils"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, student_id, username, email, password_hash, role, violation_count, created_at, updated_at`

// Create inserts a user and returns its ID.  Emails are normalized to
// lower case; the unique indexes on email and student_id surface as
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, studentID, username, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (student_id, username, email, password_hash, role) VALUES (?,?,?,?,?)`,
		strings.TrimSpace(studentID), strings.TrimSpace(username), email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.StudentID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Role, &u.ViolationCount, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, store.ErrNotFound
	}
	return u, err
}

// ByEmail fetches a user by normalized email.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email=? LIMIT 1`, email))
}

// ByID fetches a user by id.
func (r *UserRepo) ByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id=? LIMIT 1`, id))
}

// TopViolators returns up to limit users with at least one violation,
// worst offenders first, for the admin statistics view.
func (r *UserRepo) TopViolators(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userCols+` FROM users WHERE violation_count > 0
		 ORDER BY violation_count DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.StudentID, &u.Username, &u.Email, &u.PasswordHash,
			&u.Role, &u.ViolationCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

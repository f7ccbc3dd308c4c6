package model

import "time"

// Role values stored in users.role and carried in the JWT "role" claim.
const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Students register with their university student id; the
// violation counter records no-shows and is only ever incremented (by
// the expiry path), never decremented by this service.
//
// Fields:
//  ID             – primary key identifier.
//  StudentID      – unique university id of the student.
//  Username       – display name.
//  Email          – unique email address, reminder delivery target.
//  PasswordHash   – bcrypt hashed password.
//  Role           – STUDENT or ADMIN.
//  ViolationCount – number of recorded no-shows (monotonic).
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64    // users.id
	StudentID      string    // users.student_id
	Username       string    // users.username
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	Role           string    // users.role
	ViolationCount int       // users.violation_count
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Package repository implements the store contracts over MySQL.  Each
// repository owns the SQL for one aggregate; multi-statement operations
// either take an explicit *sql.Tx or open a short transaction
// internally with a committed-flag rollback defer.  All timestamps are
// stored and compared in UTC.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as registering an email or student id twice, or
// adding a seat label that already exists in the room.  Handlers
// translate this into 409.
var ErrDuplicate = errors.New("duplicate record")

// isDuplicateKey detects MySQL error 1062 (duplicate entry) without
// depending on the driver's error types.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

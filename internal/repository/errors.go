// Package repository defines error types that are reused across the stores.
// These sentinel values allow higher layers such as the services and
// handlers to distinguish between failure scenarios without knowing which
// backend produced them.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a course or booking row does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, such as a
// second booking row for the same member and course.
var ErrDuplicate = errors.New("duplicate entry")

// ErrUsernameExists is returned by the user repository on a taken username.
var ErrUsernameExists = errors.New("username already exists")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

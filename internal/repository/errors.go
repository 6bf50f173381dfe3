// Package repository contains data access logic separated from HTTP
// handlers. Sentinel errors defined here let handlers translate failure
// scenarios into HTTP responses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist or has been
// soft-deleted. Handlers translate this into HTTP 404 (or 400 on the auth
// endpoints, which deliberately do not reveal which part failed).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user whose email is already
// taken. Uniqueness is enforced both here and by a unique index on
// users.email so concurrent inserts cannot race past the application check.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// Package repository implements data access over Postgres.  This file
// defines error types reused across multiple repositories.  These
// sentinel values let higher layers such as handlers distinguish
// failure scenarios, e.g. ErrConflict signals that an operation cannot
// proceed due to dependent records (deactivating a weekly slot that
// still has active assignments).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deactivating a weekly slot
// that still has active fixed assignments. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a referenced row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by user creation when the email address is
// already registered.
var ErrEmailExists = errors.New("email already exists")

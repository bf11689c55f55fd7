// Package repository defines sentinel errors shared by the repositories.
// Handlers use these values to pick HTTP statuses: ErrEmailExists maps
// to 409 on signup, ErrUserNotFound maps to 404 on generation (and is
// deliberately flattened to 401 on login so credential failures do not
// reveal whether an account exists).
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with an existing
// account for the same email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no record exists for an identifier.
// A missing record is an error, not a zero-quota state.
var ErrUserNotFound = errors.New("user not found")

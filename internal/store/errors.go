package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when an insert loses the race on the
// unique email index.
var ErrEmailTaken = errors.New("email already taken")

package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a create collides with an existing
// account's email. The storage-level uniqueness guarantee is authoritative;
// any pre-insert existence check is only a fast path.
var ErrDuplicateEmail = errors.New("duplicate email")

package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Implementations map their driver's not-found error to this one.
var ErrNotFound = errors.New("record not found")

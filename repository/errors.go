package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a conditional decrement finds
	// fewer units available than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict is returned when a conditional update matched no row:
	// the record's status changed since it was read.
	ErrConflict = errors.New("conflicting update")
)

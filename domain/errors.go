package domain

import "errors"

var (
	// ErrNotFound indicates that a referenced column or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTask is returned when task fields fail validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrInvalidBoard is returned when an initial board definition is rejected.
	ErrInvalidBoard = errors.New("invalid board")
	// ErrInvariantViolation signals a duplicated or orphaned task. It points at
	// a programming error, never at bad input.
	ErrInvariantViolation = errors.New("invariant violation")
)

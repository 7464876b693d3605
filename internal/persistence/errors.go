package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConflict is returned when a reservation write would overlap another
	// reservation of the same resource.
	ErrConflict = errors.New("persistence: overlapping reservation")
	// ErrDuplicate is returned when a write breaks a uniqueness rule, such as
	// one desk per employee per day.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned for rows the schema rejects outright.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

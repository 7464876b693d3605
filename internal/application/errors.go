package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting employee may not touch a reservation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is the not-found sentinel shared with the domain package.
	ErrNotFound = booking.ErrNotFound

	errContention = errors.New("reservation kept changing while acquiring locks")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, booking.ErrNotFound)
}

// storageError wraps a failed store call. Domain errors pass through untouched.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		se *booking.StorageError
		pv *booking.PolicyViolation
		ce *booking.ConflictError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &se), errors.As(err, &pv), errors.As(err, &ce), errors.As(err, &ve),
		errors.Is(err, booking.ErrNotFound), errors.Is(err, ErrUnauthorized):
		return err
	}
	return &booking.StorageError{Op: op, Err: err}
}

// mapLookupError turns a store miss into booking.ErrNotFound and anything
// else into a storage failure.
func mapLookupError(op, what, id string, err error) error {
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, booking.ErrNotFound) {
		return notFound(what, id)
	}
	return storageError(op, err)
}

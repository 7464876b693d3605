package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates a reservation, resource, employee or timeslot does not exist.
	ErrNotFound = errors.New("booking: not found")
	// ErrPolicyViolation matches every *PolicyViolation.
	ErrPolicyViolation = errors.New("booking: policy violation")
	// ErrResourceConflict matches every *ConflictError.
	ErrResourceConflict = errors.New("booking: resource conflict")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("booking: storage failure")

	ErrPastDate              = errors.New("booking: date is in the past")
	ErrWeekendNotAllowed     = errors.New("booking: weekend bookings are not allowed")
	ErrAdvanceWindowExceeded = errors.New("booking: date is beyond the advance booking window")
	ErrHolidayBlackout       = errors.New("booking: date is a blocked holiday")
	ErrEmployeeAlreadyBooked = errors.New("booking: employee already holds a reservation on this date")
)

// PolicyReason is a stable machine-readable label for a rejected booking rule.
type PolicyReason string

const (
	ReasonPastDate              PolicyReason = "past_date"
	ReasonWeekendNotAllowed     PolicyReason = "weekend_not_allowed"
	ReasonAdvanceWindowExceeded PolicyReason = "advance_window_exceeded"
	ReasonHolidayBlackout       PolicyReason = "holiday_blackout"
	ReasonEmployeeAlreadyBooked PolicyReason = "employee_already_booked"
)

func (r PolicyReason) sentinel() error {
	switch r {
	case ReasonPastDate:
		return ErrPastDate
	case ReasonWeekendNotAllowed:
		return ErrWeekendNotAllowed
	case ReasonAdvanceWindowExceeded:
		return ErrAdvanceWindowExceeded
	case ReasonHolidayBlackout:
		return ErrHolidayBlackout
	case ReasonEmployeeAlreadyBooked:
		return ErrEmployeeAlreadyBooked
	}
	return nil
}

// PolicyViolation reports the first booking rule a request failed.
type PolicyViolation struct {
	Reason   PolicyReason
	Date     time.Time
	MaxWeeks int
}

// NewPolicyViolation builds a violation for the given reason and date.
func NewPolicyViolation(reason PolicyReason, date time.Time) *PolicyViolation {
	return &PolicyViolation{Reason: reason, Date: date}
}

func (v *PolicyViolation) Error() string {
	day := FormatDate(v.Date)
	switch v.Reason {
	case ReasonPastDate:
		return fmt.Sprintf("cannot book %s: date is in the past", day)
	case ReasonWeekendNotAllowed:
		return fmt.Sprintf("cannot book %s: weekends are not bookable", day)
	case ReasonAdvanceWindowExceeded:
		return fmt.Sprintf("cannot book %s: maximum advance booking is %d week(s)", day, v.MaxWeeks)
	case ReasonHolidayBlackout:
		return fmt.Sprintf("cannot book %s: holiday", day)
	case ReasonEmployeeAlreadyBooked:
		return fmt.Sprintf("cannot book %s: employee already has a reservation that day", day)
	}
	return fmt.Sprintf("cannot book %s: %s", day, v.Reason)
}

// Is lets errors.Is match both ErrPolicyViolation and the reason sentinel.
func (v *PolicyViolation) Is(target error) bool {
	if target == ErrPolicyViolation {
		return true
	}
	sentinel := v.Reason.sentinel()
	return sentinel != nil && target == sentinel
}

// ConflictError lists the existing reservations a request overlapped.
type ConflictError struct {
	Resource  ResourceRef
	Date      time.Time
	Interval  Interval
	Conflicts []Reservation
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.ID)
	}
	msg := fmt.Sprintf("%s is already reserved on %s during %s", e.Resource, FormatDate(e.Date), e.Interval)
	if len(ids) > 0 {
		msg += " (" + strings.Join(ids, ", ") + ")"
	}
	return msg
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrResourceConflict
}

// StorageError wraps a failure of a backing store. Callers may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("storage failure: %v", e.Err)
	}
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Retryable reports whether repeating the operation may succeed.
func (e *StorageError) Retryable() bool {
	return true
}

// IsRetryable reports whether err carries a retryable storage failure.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable()
}

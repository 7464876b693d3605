// Package policy holds the booking rules checked before any reservation is
// written. Rules run in order and the first failure is reported.
package policy

import (
	"context"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// Request is what the rules judge.
type Request struct {
	Kind  booking.Kind
	Role  booking.Role
	Date  time.Time
	Today time.Time
}

// Rule returns a *booking.PolicyViolation when the request breaks it, or a
// plain error when it could not decide.
type Rule func(ctx context.Context, req Request) error

// HolidayChecker reports whether a date is open for bookings.
type HolidayChecker interface {
	IsBookingAllowed(ctx context.Context, date time.Time) (bool, error)
}

// Validator applies an ordered rule list.
type Validator struct {
	rules []Rule
}

// NewValidator builds a validator from rules in evaluation order.
func NewValidator(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// ForKind returns the rule set of a resource kind. Desks are limited to
// weekdays within the role's advance window; rooms and equipment only reject
// past dates and blocking holidays.
func ForKind(kind booking.Kind, holidays HolidayChecker) *Validator {
	if kind == booking.KindDesk {
		return NewValidator(PastDate(), Weekday(), AdvanceWindow(), Holiday(holidays))
	}
	return NewValidator(PastDate(), Holiday(holidays))
}

// Validate runs the rules and returns the first failure.
func (v *Validator) Validate(ctx context.Context, req Request) error {
	req.Date = booking.DateOf(req.Date)
	req.Today = booking.DateOf(req.Today)
	for _, rule := range v.rules {
		if err := rule(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// PastDate rejects dates before today. Today itself is bookable.
func PastDate() Rule {
	return func(ctx context.Context, req Request) error {
		if req.Date.Before(req.Today) {
			return booking.NewPolicyViolation(booking.ReasonPastDate, req.Date)
		}
		return nil
	}
}

// Weekday rejects Saturdays and Sundays.
func Weekday() Rule {
	return func(ctx context.Context, req Request) error {
		if booking.IsWeekend(req.Date) {
			return booking.NewPolicyViolation(booking.ReasonWeekendNotAllowed, req.Date)
		}
		return nil
	}
}

// AdvanceWindow rejects dates later than today plus the role's window.
func AdvanceWindow() Rule {
	return func(ctx context.Context, req Request) error {
		weeks := req.Role.AdvanceWeeks()
		limit := req.Today.AddDate(0, 0, 7*weeks)
		if req.Date.After(limit) {
			return &booking.PolicyViolation{
				Reason:   booking.ReasonAdvanceWindowExceeded,
				Date:     req.Date,
				MaxWeeks: weeks,
			}
		}
		return nil
	}
}

// Holiday rejects dates whose holiday record forbids bookings.
func Holiday(holidays HolidayChecker) Rule {
	return func(ctx context.Context, req Request) error {
		allowed, err := holidays.IsBookingAllowed(ctx, req.Date)
		if err != nil {
			return err
		}
		if !allowed {
			return booking.NewPolicyViolation(booking.ReasonHolidayBlackout, req.Date)
		}
		return nil
	}
}

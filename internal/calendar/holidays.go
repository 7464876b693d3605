// Package calendar answers date questions that depend on reference data:
// whether a holiday blocks bookings and what interval a timeslot stands for.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// HolidayLookup finds the holiday on a date. It returns an error matching
// persistence.ErrNotFound or booking.ErrNotFound for ordinary days.
type HolidayLookup interface {
	FindHolidayByDate(ctx context.Context, date time.Time) (booking.Holiday, error)
}

// HolidayCalendar decides whether a date is open for bookings.
type HolidayCalendar struct {
	holidays HolidayLookup
}

// NewHolidayCalendar wraps a holiday store.
func NewHolidayCalendar(holidays HolidayLookup) *HolidayCalendar {
	return &HolidayCalendar{holidays: holidays}
}

// Holiday returns the holiday on date and whether one exists.
func (c *HolidayCalendar) Holiday(ctx context.Context, date time.Time) (booking.Holiday, bool, error) {
	holiday, err := c.holidays.FindHolidayByDate(ctx, booking.DateOf(date))
	if err != nil {
		if isNotFound(err) {
			return booking.Holiday{}, false, nil
		}
		return booking.Holiday{}, false, err
	}
	return holiday, true, nil
}

// IsBookingAllowed reports whether date may be booked. A day with no holiday
// record is always allowed; otherwise the record's flag decides.
func (c *HolidayCalendar) IsBookingAllowed(ctx context.Context, date time.Time) (bool, error) {
	holiday, found, err := c.Holiday(ctx, date)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return holiday.BookingAllowed, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, persistence.ErrNotFound) || errors.Is(err, booking.ErrNotFound)
}

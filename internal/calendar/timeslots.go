package calendar

import (
	"context"
	"fmt"

	"github.com/example/workspace-booking/internal/booking"
)

// TimeslotLookup finds a timeslot by id.
type TimeslotLookup interface {
	FindTimeslotByID(ctx context.Context, id string) (booking.Timeslot, error)
}

// TimeslotCatalog resolves timeslot ids into intervals.
type TimeslotCatalog struct {
	timeslots TimeslotLookup
}

// NewTimeslotCatalog wraps a timeslot store.
func NewTimeslotCatalog(timeslots TimeslotLookup) *TimeslotCatalog {
	return &TimeslotCatalog{timeslots: timeslots}
}

// Resolve returns the interval of the timeslot. Unknown ids wrap
// booking.ErrNotFound.
func (c *TimeslotCatalog) Resolve(ctx context.Context, id string) (booking.Interval, error) {
	ts, err := c.timeslots.FindTimeslotByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return booking.Interval{}, fmt.Errorf("timeslot %q: %w", id, booking.ErrNotFound)
		}
		return booking.Interval{}, err
	}
	if !ts.Interval.Valid() {
		return booking.Interval{}, fmt.Errorf("timeslot %q has invalid interval %s", id, ts.Interval)
	}
	return ts.Interval, nil
}

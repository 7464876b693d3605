package persistence

import (
	"context"
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// ReservationRepository stores reservations of every kind. SaveReservation is
// an upsert keyed by ID and must reject overlaps with ErrConflict and a second
// desk for the same employee and date with ErrDuplicate.
type ReservationRepository interface {
	FindReservationByID(ctx context.Context, id string) (booking.Reservation, error)
	FindReservationsByResourceAndDate(ctx context.Context, kind booking.Kind, resourceID string, date time.Time) ([]booking.Reservation, error)
	FindReservationsByEmployeeAndDate(ctx context.Context, kind booking.Kind, employeeID string, date time.Time) ([]booking.Reservation, error)
	FindReservationsByDate(ctx context.Context, kind booking.Kind, date time.Time) ([]booking.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]booking.Reservation, error)
	SaveReservation(ctx context.Context, reservation booking.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	ReservationExists(ctx context.Context, id string) (bool, error)
}

// ResourceRepository is the catalogue of bookable resources.
type ResourceRepository interface {
	GetResource(ctx context.Context, kind booking.Kind, id string) (booking.Resource, error)
	ListResources(ctx context.Context, kind booking.Kind) ([]booking.Resource, error)
	UpsertResource(ctx context.Context, resource booking.Resource) error
}

// EmployeeRepository is the employee directory.
type EmployeeRepository interface {
	GetEmployee(ctx context.Context, id string) (booking.Employee, error)
	GetRole(ctx context.Context, employeeID string) (booking.Role, error)
	UpsertEmployee(ctx context.Context, employee booking.Employee) error
}

// HolidayRepository returns ErrNotFound from FindHolidayByDate for ordinary days.
type HolidayRepository interface {
	FindHolidayByDate(ctx context.Context, date time.Time) (booking.Holiday, error)
	ListHolidays(ctx context.Context) ([]booking.Holiday, error)
	UpsertHoliday(ctx context.Context, holiday booking.Holiday) error
	DeleteHoliday(ctx context.Context, date time.Time) error
}

// TimeslotRepository stores predefined timeslots.
type TimeslotRepository interface {
	FindTimeslotByID(ctx context.Context, id string) (booking.Timeslot, error)
	ListTimeslots(ctx context.Context) ([]booking.Timeslot, error)
	UpsertTimeslot(ctx context.Context, timeslot booking.Timeslot) error
}

// Store is a complete backend.
type Store interface {
	ReservationRepository
	ResourceRepository
	EmployeeRepository
	HolidayRepository
	TimeslotRepository
}

// Seed loads reference data into store.
func Seed(ctx context.Context, store Store, data SeedData) error {
	for _, e := range data.Employees {
		if err := store.UpsertEmployee(ctx, e); err != nil {
			return err
		}
	}
	for _, r := range data.Resources {
		if err := store.UpsertResource(ctx, r); err != nil {
			return err
		}
	}
	for _, h := range data.Holidays {
		if err := store.UpsertHoliday(ctx, h); err != nil {
			return err
		}
	}
	for _, ts := range data.Timeslots {
		if err := store.UpsertTimeslot(ctx, ts); err != nil {
			return err
		}
	}
	return nil
}

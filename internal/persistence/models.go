package persistence

import (
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// ReservationFilter narrows reservation listings. Zero fields match everything;
// From and To are inclusive calendar dates.
type ReservationFilter struct {
	Kind       booking.Kind
	EmployeeID string
	ResourceID string
	From       *time.Time
	To         *time.Time
}

// Matches reports whether r satisfies the filter.
func (f ReservationFilter) Matches(r booking.Reservation) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.ResourceID != "" && r.ResourceID != f.ResourceID {
		return false
	}
	if f.From != nil && r.Date.Before(booking.DateOf(*f.From)) {
		return false
	}
	if f.To != nil && r.Date.After(booking.DateOf(*f.To)) {
		return false
	}
	return true
}

// SeedData bundles the reference data a store is loaded with.
type SeedData struct {
	Employees []booking.Employee
	Resources []booking.Resource
	Holidays  []booking.Holiday
	Timeslots []booking.Timeslot
}

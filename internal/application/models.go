package application

import (
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// CreateReservationParams describes a new reservation. Exactly one of
// Interval and TimeslotID must be set.
type CreateReservationParams struct {
	Kind       booking.Kind
	EmployeeID string
	ResourceID string
	Date       time.Time
	Interval   *booking.Interval
	TimeslotID string
}

// ReservationPatch lists the fields an update changes. Nil fields keep their
// current value. Setting Interval clears the timeslot reference.
type ReservationPatch struct {
	EmployeeID *string
	ResourceID *string
	Date       *time.Time
	Interval   *booking.Interval
	TimeslotID *string
}

// UpdateReservationParams identifies the reservation and the change. When
// ActorID is set, only the owner or an employee whose role can reassign may
// update, and only the latter may change the employee.
type UpdateReservationParams struct {
	Kind          booking.Kind
	ReservationID string
	ActorID       string
	Patch         ReservationPatch
}

// CancelReservationParams identifies the reservation to cancel.
type CancelReservationParams struct {
	Kind          booking.Kind
	ReservationID string
	ActorID       string
}

// AvailabilityQuery asks which resources are free. ResourceID narrows the
// answer to a single resource.
type AvailabilityQuery struct {
	Kind       booking.Kind
	Date       time.Time
	Interval   *booking.Interval
	TimeslotID string
	ResourceID string
}

// ListReservationsParams filters reservation listings. From and To are
// inclusive dates.
type ListReservationsParams struct {
	Kind       booking.Kind
	EmployeeID string
	ResourceID string
	From       *time.Time
	To         *time.Time
}

// KindSpec configures the lifecycle of one resource kind.
type KindSpec struct {
	Kind booking.Kind
	// OnePerEmployeePerDay limits each employee to a single reservation of
	// this kind per date.
	OnePerEmployeePerDay bool
}

// DefaultKindSpecs returns the desk, room and equipment configuration.
func DefaultKindSpecs() []KindSpec {
	return []KindSpec{
		{Kind: booking.KindDesk, OnePerEmployeePerDay: true},
		{Kind: booking.KindRoom},
		{Kind: booking.KindEquipment},
	}
}

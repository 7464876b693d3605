package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

var reservationCounter uint64

// referenceTime is a Sunday morning; the Monday after it is the first
// weekday a NORMAL employee can book.
var referenceTime = time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Today is the booking date of ReferenceTime.
func Today() time.Time {
	return booking.DateOf(referenceTime)
}

// Day returns the date offset days after Today.
func Day(offset int) time.Time {
	return Today().AddDate(0, 0, offset)
}

// Span builds an interval from "HH:MM" strings and panics on bad input.
func Span(start, end string) booking.Interval {
	interval, err := booking.ParseInterval(start, end)
	if err != nil {
		panic(err)
	}
	return interval
}

// Standard employees, one per role plus a second NORMAL employee.
const (
	EmployeeNormal     = "E"
	EmployeeNormal2    = "F"
	EmployeePrivileged = "P"
	EmployeeOperator   = "O"
	EmployeeAdmin      = "A"
)

// Standard timeslots.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotFullDay   = "fullday"
)

// Holiday dates seeded by StandardSeed.
var (
	// BlackoutDay is a Wednesday on which nothing may be booked.
	BlackoutDay = booking.NewDate(2026, time.October, 21)
	// OpenHoliday is a Thursday holiday on which booking stays allowed.
	OpenHoliday = booking.NewDate(2026, time.October, 22)
)

// StandardSeed returns the reference data most tests start from.
func StandardSeed() persistence.SeedData {
	return persistence.SeedData{
		Employees: []booking.Employee{
			{ID: EmployeeNormal, Name: "Erin Normal", Role: booking.RoleNormal},
			{ID: EmployeeNormal2, Name: "Frank Normal", Role: booking.RoleNormal},
			{ID: EmployeePrivileged, Name: "Pat Privileged", Role: booking.RolePrivileged},
			{ID: EmployeeOperator, Name: "Oli Operator", Role: booking.RoleOperator},
			{ID: EmployeeAdmin, Name: "Ada Admin", Role: booking.RoleAdmin},
		},
		Resources: []booking.Resource{
			{Kind: booking.KindDesk, ID: "D1", Name: "Desk 1"},
			{Kind: booking.KindDesk, ID: "D2", Name: "Desk 2"},
			{Kind: booking.KindDesk, ID: "D3", Name: "Desk 3"},
			{Kind: booking.KindRoom, ID: "R1", Name: "Room 1"},
			{Kind: booking.KindRoom, ID: "R2", Name: "Room 2"},
			{Kind: booking.KindEquipment, ID: "EQ1", Name: "Projector"},
		},
		Holidays: []booking.Holiday{
			{Date: BlackoutDay, Description: "Founders day", BookingAllowed: false},
			{Date: OpenHoliday, Description: "Regional holiday", BookingAllowed: true},
		},
		Timeslots: []booking.Timeslot{
			{ID: SlotMorning, Name: "Morning", Interval: Span("09:00", "12:00")},
			{ID: SlotAfternoon, Name: "Afternoon", Interval: Span("13:00", "17:00")},
			{ID: SlotFullDay, Name: "Full day", Interval: booking.FullDay},
		},
	}
}

// ReservationFixture represents a deterministic reservation that can be
// stored directly or turned into create params.
type ReservationFixture struct {
	ID         string
	Kind       booking.Kind
	EmployeeID string
	ResourceID string
	Date       time.Time
	Interval   booking.Interval
	TimeslotID string
	CreatedAt  time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a morning room reservation for E on the
// Monday after ReferenceTime, with optional overrides.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		ID:         fmt.Sprintf("reservation-%03d", idx),
		Kind:       booking.KindRoom,
		EmployeeID: EmployeeNormal,
		ResourceID: "R1",
		Date:       Day(1),
		Interval:   Span("09:00", "12:00"),
		CreatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the identifier.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithKind overrides the resource kind.
func WithKind(kind booking.Kind) ReservationOption {
	return func(f *ReservationFixture) {
		f.Kind = kind
	}
}

// WithEmployee overrides the booking employee.
func WithEmployee(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.EmployeeID = id
	}
}

// WithResource overrides the reserved resource.
func WithResource(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ResourceID = id
	}
}

// WithDate overrides the booking date.
func WithDate(date time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Date = booking.DateOf(date)
	}
}

// WithInterval overrides the time range and clears any timeslot.
func WithInterval(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Interval = Span(start, end)
		f.TimeslotID = ""
	}
}

// WithTimeslot sets the timeslot reference together with its interval.
func WithTimeslot(id string, interval booking.Interval) ReservationOption {
	return func(f *ReservationFixture) {
		f.TimeslotID = id
		f.Interval = interval
	}
}

// Reservation materialises the fixture as a stored reservation.
func (f ReservationFixture) Reservation() booking.Reservation {
	return booking.Reservation{
		ID:         f.ID,
		Kind:       f.Kind,
		EmployeeID: f.EmployeeID,
		ResourceID: f.ResourceID,
		Date:       f.Date,
		Interval:   f.Interval,
		TimeslotID: f.TimeslotID,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.CreatedAt,
	}
}

// CreateParams turns the fixture into a create request. A timeslot fixture
// books by timeslot, anything else by explicit interval.
func (f ReservationFixture) CreateParams() application.CreateReservationParams {
	params := application.CreateReservationParams{
		Kind:       f.Kind,
		EmployeeID: f.EmployeeID,
		ResourceID: f.ResourceID,
		Date:       f.Date,
	}
	if f.TimeslotID != "" {
		params.TimeslotID = f.TimeslotID
		return params
	}
	interval := f.Interval
	params.Interval = &interval
	return params
}

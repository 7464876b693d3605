// Package memory provides a map-backed persistence.Store. SaveReservation
// checks overlaps and the desk-per-day rule under its write lock, so it
// behaves like the SQL stores' constraints.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/scheduler"
)

// Storage is an in-memory persistence.Store.
type Storage struct {
	mu           sync.RWMutex
	reservations map[string]booking.Reservation
	resources    map[booking.ResourceRef]booking.Resource
	employees    map[string]booking.Employee
	holidays     map[time.Time]booking.Holiday
	timeslots    map[string]booking.Timeslot
}

var _ persistence.Store = (*Storage)(nil)

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		reservations: make(map[string]booking.Reservation),
		resources:    make(map[booking.ResourceRef]booking.Resource),
		employees:    make(map[string]booking.Employee),
		holidays:     make(map[time.Time]booking.Holiday),
		timeslots:    make(map[string]booking.Timeslot),
	}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// --- ReservationRepository ---

// FindReservationByID returns a reservation by ID.
func (s *Storage) FindReservationByID(ctx context.Context, id string) (booking.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return booking.Reservation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return booking.Reservation{}, persistence.ErrNotFound
	}
	return r, nil
}

// FindReservationsByResourceAndDate returns reservations holding a resource on a date.
func (s *Storage) FindReservationsByResourceAndDate(ctx context.Context, kind booking.Kind, resourceID string, date time.Time) ([]booking.Reservation, error) {
	day := booking.DateOf(date)
	return s.collect(ctx, func(r booking.Reservation) bool {
		return r.Kind == kind && r.ResourceID == resourceID && r.Date.Equal(day)
	})
}

// FindReservationsByEmployeeAndDate returns an employee's reservations of one kind on a date.
func (s *Storage) FindReservationsByEmployeeAndDate(ctx context.Context, kind booking.Kind, employeeID string, date time.Time) ([]booking.Reservation, error) {
	day := booking.DateOf(date)
	return s.collect(ctx, func(r booking.Reservation) bool {
		return r.Kind == kind && r.EmployeeID == employeeID && r.Date.Equal(day)
	})
}

// FindReservationsByDate returns every reservation of a kind on a date.
func (s *Storage) FindReservationsByDate(ctx context.Context, kind booking.Kind, date time.Time) ([]booking.Reservation, error) {
	day := booking.DateOf(date)
	return s.collect(ctx, func(r booking.Reservation) bool {
		return r.Kind == kind && r.Date.Equal(day)
	})
}

// ListReservations returns reservations matching filter ordered by date and start.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]booking.Reservation, error) {
	return s.collect(ctx, filter.Matches)
}

// SaveReservation inserts or replaces a reservation.
func (s *Storage) SaveReservation(ctx context.Context, reservation booking.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !reservation.Interval.Valid() {
		return persistence.ErrConstraintViolation
	}
	reservation.Date = booking.DateOf(reservation.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.reservations {
		if id == reservation.ID || other.Kind != reservation.Kind || !other.Date.Equal(reservation.Date) {
			continue
		}
		if other.ResourceID == reservation.ResourceID && scheduler.Overlaps(other.Interval, reservation.Interval) {
			return persistence.ErrConflict
		}
		if reservation.Kind == booking.KindDesk && other.EmployeeID == reservation.EmployeeID {
			return persistence.ErrDuplicate
		}
	}
	s.reservations[reservation.ID] = reservation
	return nil
}

// DeleteReservation removes a reservation.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// ReservationExists reports whether a reservation with id is stored.
func (s *Storage) ReservationExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.reservations[id]
	return ok, nil
}

func (s *Storage) collect(ctx context.Context, match func(booking.Reservation) bool) ([]booking.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Reservation, 0)
	for _, r := range s.reservations {
		if match(r) {
			result = append(result, r)
		}
	}
	sortReservations(result)
	return result, nil
}

func sortReservations(reservations []booking.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		a, b := reservations[i], reservations[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Interval.Start != b.Interval.Start {
			return a.Interval.Start < b.Interval.Start
		}
		return a.ID < b.ID
	})
}

// --- ResourceRepository ---

// GetResource returns a catalogue entry.
func (s *Storage) GetResource(ctx context.Context, kind booking.Kind, id string) (booking.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[booking.ResourceRef{Kind: kind, ID: id}]
	if !ok {
		return booking.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// ListResources returns every resource of kind ordered by ID.
func (s *Storage) ListResources(ctx context.Context, kind booking.Kind) ([]booking.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]booking.Resource, 0)
	for ref, resource := range s.resources {
		if ref.Kind == kind {
			resources = append(resources, resource)
		}
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })
	return resources, nil
}

// UpsertResource adds or replaces a catalogue entry.
func (s *Storage) UpsertResource(ctx context.Context, resource booking.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resources[resource.Ref()] = resource
	return nil
}

// --- EmployeeRepository ---

// GetEmployee returns a directory entry.
func (s *Storage) GetEmployee(ctx context.Context, id string) (booking.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.employees[id]
	if !ok {
		return booking.Employee{}, persistence.ErrNotFound
	}
	return employee, nil
}

// GetRole returns the role of an employee.
func (s *Storage) GetRole(ctx context.Context, employeeID string) (booking.Role, error) {
	employee, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return employee.Role, nil
}

// UpsertEmployee adds or replaces a directory entry.
func (s *Storage) UpsertEmployee(ctx context.Context, employee booking.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[employee.ID] = employee
	return nil
}

// --- HolidayRepository ---

// FindHolidayByDate returns the holiday on date, or ErrNotFound.
func (s *Storage) FindHolidayByDate(ctx context.Context, date time.Time) (booking.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holiday, ok := s.holidays[booking.DateOf(date)]
	if !ok {
		return booking.Holiday{}, persistence.ErrNotFound
	}
	return holiday, nil
}

// ListHolidays returns every holiday ordered by date.
func (s *Storage) ListHolidays(ctx context.Context) ([]booking.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holidays := make([]booking.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		holidays = append(holidays, h)
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

// UpsertHoliday adds or replaces the holiday on its date.
func (s *Storage) UpsertHoliday(ctx context.Context, holiday booking.Holiday) error {
	holiday.Date = booking.DateOf(holiday.Date)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holidays[holiday.Date] = holiday
	return nil
}

// DeleteHoliday removes the holiday on date.
func (s *Storage) DeleteHoliday(ctx context.Context, date time.Time) error {
	day := booking.DateOf(date)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.holidays[day]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.holidays, day)
	return nil
}

// --- TimeslotRepository ---

// FindTimeslotByID returns a predefined timeslot.
func (s *Storage) FindTimeslotByID(ctx context.Context, id string) (booking.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.timeslots[id]
	if !ok {
		return booking.Timeslot{}, persistence.ErrNotFound
	}
	return ts, nil
}

// ListTimeslots returns every timeslot ordered by start.
func (s *Storage) ListTimeslots(ctx context.Context) ([]booking.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timeslots := make([]booking.Timeslot, 0, len(s.timeslots))
	for _, ts := range s.timeslots {
		timeslots = append(timeslots, ts)
	}
	sort.Slice(timeslots, func(i, j int) bool {
		if timeslots[i].Interval.Start != timeslots[j].Interval.Start {
			return timeslots[i].Interval.Start < timeslots[j].Interval.Start
		}
		return timeslots[i].ID < timeslots[j].ID
	})
	return timeslots, nil
}

// UpsertTimeslot adds or replaces a timeslot.
func (s *Storage) UpsertTimeslot(ctx context.Context, timeslot booking.Timeslot) error {
	if !timeslot.Interval.Valid() {
		return persistence.ErrConstraintViolation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeslots[timeslot.ID] = timeslot
	return nil
}

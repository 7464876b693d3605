package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/calendar"
	"github.com/example/workspace-booking/internal/persistence"
)

// Dependencies lists the stores the booking service reads and writes.
type Dependencies struct {
	Reservations persistence.ReservationRepository
	Resources    ResourceCatalog
	Employees    EmployeeDirectory
	Holidays     calendar.HolidayLookup
	Timeslots    calendar.TimeslotLookup
}

// DependenciesFromStore wires every dependency to a single store.
func DependenciesFromStore(store persistence.Store) Dependencies {
	return Dependencies{
		Reservations: store,
		Resources:    store,
		Employees:    store,
		Holidays:     store,
		Timeslots:    store,
	}
}

// Options tunes the booking service. Zero values select defaults.
type Options struct {
	IDGenerator func() string
	Now         func() time.Time
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// StoreTimeout bounds each store call. Zero disables the bound.
	StoreTimeout time.Duration
	// CatalogTTL is how long resource listings are cached. Negative disables
	// caching; zero selects 30 seconds.
	CatalogTTL time.Duration
	Logger     *slog.Logger
	Kinds      []KindSpec
}

// BookingService is the entry point for reservations of every kind.
type BookingService struct {
	lifecycles map[booking.Kind]*Lifecycle
	catalog    *resourceCache
	employees  EmployeeDirectory
	now        func() time.Time
	location   *time.Location
	timeout    time.Duration
	logger     *slog.Logger
}

// NewBookingService constructs a booking service over deps.
func NewBookingService(deps Dependencies, opts Options) *BookingService {
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if len(opts.Kinds) == 0 {
		opts.Kinds = DefaultKindSpecs()
	}

	locks := NewLockSet()
	catalog := newResourceCache(opts.CatalogTTL, opts.Now)
	lifecycles := make(map[booking.Kind]*Lifecycle, len(opts.Kinds))
	for _, spec := range opts.Kinds {
		lifecycles[spec.Kind] = newLifecycle(spec, deps, locks, catalog, opts)
	}
	return &BookingService{
		lifecycles: lifecycles,
		catalog:    catalog,
		employees:  deps.Employees,
		now:        opts.Now,
		location:   opts.Location,
		timeout:    opts.StoreTimeout,
		logger:     opts.Logger,
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, kind booking.Kind, attrs ...any) *slog.Logger {
	return operationLogger(ctx, s.logger, operation, kind, attrs...)
}

// Lifecycle returns the lifecycle managing kind.
func (s *BookingService) Lifecycle(kind booking.Kind) (*Lifecycle, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	l, ok := s.lifecycles[kind]
	if !ok {
		return nil, &ValidationError{FieldErrors: map[string]string{"kind": fmt.Sprintf("unsupported resource kind %q", kind)}}
	}
	return l, nil
}

// Today returns the current booking date.
func (s *BookingService) Today() time.Time {
	return booking.DateOf(s.now().In(s.location))
}

// InvalidateCatalog drops cached resource listings, e.g. after seeding.
func (s *BookingService) InvalidateCatalog() {
	s.catalog.Invalidate()
}

// CreateReservation books a resource for an employee.
func (s *BookingService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation booking.Reservation, err error) {
	logger := s.loggerWith(ctx, "CreateReservation", params.Kind,
		"employee_id", params.EmployeeID,
		"resource_id", params.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created",
			"date", booking.FormatDate(reservation.Date),
			"interval", reservation.Interval.String(),
		)
	}()

	var l *Lifecycle
	if l, err = s.Lifecycle(params.Kind); err != nil {
		return
	}
	reservation, err = l.Create(ctx, params)
	return
}

// UpdateReservation changes an existing reservation.
func (s *BookingService) UpdateReservation(ctx context.Context, params UpdateReservationParams) (reservation booking.Reservation, err error) {
	logger := s.loggerWith(ctx, "UpdateReservation", params.Kind,
		"reservation_id", params.ReservationID,
		"actor_id", params.ActorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation updated",
			"resource_id", reservation.ResourceID,
			"date", booking.FormatDate(reservation.Date),
			"interval", reservation.Interval.String(),
		)
	}()

	var l *Lifecycle
	if l, err = s.Lifecycle(params.Kind); err != nil {
		return
	}
	reservation, err = l.Update(ctx, params)
	return
}

// CancelReservation deletes a reservation.
func (s *BookingService) CancelReservation(ctx context.Context, params CancelReservationParams) (err error) {
	logger := s.loggerWith(ctx, "CancelReservation", params.Kind,
		"reservation_id", params.ReservationID,
		"actor_id", params.ActorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	var l *Lifecycle
	if l, err = s.Lifecycle(params.Kind); err != nil {
		return
	}
	err = l.Cancel(ctx, params)
	return
}

// FindAvailable returns the resources of a kind free for the query.
func (s *BookingService) FindAvailable(ctx context.Context, query AvailabilityQuery) ([]string, error) {
	l, err := s.Lifecycle(query.Kind)
	if err != nil {
		return nil, err
	}
	ids, err := l.FindAvailable(ctx, query)
	if err != nil {
		s.loggerWith(ctx, "FindAvailable", query.Kind).
			WarnContext(ctx, "availability lookup failed", "error", err, "error_kind", ErrorKind(err))
	}
	return ids, err
}

// ListAvailable returns every resource of kind free for interval on date.
func (s *BookingService) ListAvailable(ctx context.Context, kind booking.Kind, date time.Time, interval booking.Interval) ([]string, error) {
	return s.FindAvailable(ctx, AvailabilityQuery{Kind: kind, Date: date, Interval: &interval})
}

// IsAvailable reports whether one resource is free for interval on date.
func (s *BookingService) IsAvailable(ctx context.Context, kind booking.Kind, resourceID string, date time.Time, interval booking.Interval) (bool, error) {
	l, err := s.Lifecycle(kind)
	if err != nil {
		return false, err
	}
	return l.IsAvailable(ctx, resourceID, date, interval)
}

// FreeSlots returns the unreserved gaps of a resource inside window.
func (s *BookingService) FreeSlots(ctx context.Context, kind booking.Kind, resourceID string, date time.Time, window booking.Interval) ([]booking.Interval, error) {
	l, err := s.Lifecycle(kind)
	if err != nil {
		return nil, err
	}
	return l.FreeSlots(ctx, resourceID, date, window)
}

// GetReservation returns a single reservation of kind.
func (s *BookingService) GetReservation(ctx context.Context, kind booking.Kind, id string) (booking.Reservation, error) {
	l, err := s.Lifecycle(kind)
	if err != nil {
		return booking.Reservation{}, err
	}
	return l.Get(ctx, id)
}

// ListReservations returns reservations of a kind matching params.
func (s *BookingService) ListReservations(ctx context.Context, params ListReservationsParams) ([]booking.Reservation, error) {
	l, err := s.Lifecycle(params.Kind)
	if err != nil {
		return nil, err
	}
	return l.List(ctx, params)
}

// History returns an employee's recent reservations of kind.
func (s *BookingService) History(ctx context.Context, kind booking.Kind, employeeID string) ([]booking.Reservation, error) {
	l, err := s.Lifecycle(kind)
	if err != nil {
		return nil, err
	}
	return l.History(ctx, employeeID)
}

// EmployeeRole returns the role of an employee, defaulting unknown roles to NORMAL.
func (s *BookingService) EmployeeRole(ctx context.Context, employeeID string) (booking.Role, error) {
	role, err := call(ctx, s.timeout, func(ctx context.Context) (booking.Role, error) {
		return s.employees.GetRole(ctx, employeeID)
	})
	if err != nil {
		return "", mapLookupError("load employee", "employee", employeeID, err)
	}
	if !role.Valid() {
		return booking.RoleNormal, nil
	}
	return role, nil
}

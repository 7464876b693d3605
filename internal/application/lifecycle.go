package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/calendar"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/policy"
	"github.com/example/workspace-booking/internal/scheduler"
)

const (
	maxUpdateAttempts = 5
	historyDays       = 14
)

// ResourceCatalog lists the resources of a kind.
type ResourceCatalog interface {
	GetResource(ctx context.Context, kind booking.Kind, id string) (booking.Resource, error)
	ListResources(ctx context.Context, kind booking.Kind) ([]booking.Resource, error)
}

// EmployeeDirectory resolves an employee's role.
type EmployeeDirectory interface {
	GetRole(ctx context.Context, employeeID string) (booking.Role, error)
}

// Lifecycle creates, updates and cancels the reservations of one resource
// kind. Writes are serialised per resource and date (and per employee and
// date for desks) through a shared LockSet; the store's own constraints catch
// writers in other processes.
type Lifecycle struct {
	spec         KindSpec
	reservations persistence.ReservationRepository
	resources    ResourceCatalog
	employees    EmployeeDirectory
	timeslots    *calendar.TimeslotCatalog
	validator    *policy.Validator
	catalog      *resourceCache
	locks        *LockSet
	idGenerator  func() string
	now          func() time.Time
	location     *time.Location
	timeout      time.Duration
}

func newLifecycle(spec KindSpec, deps Dependencies, locks *LockSet, catalog *resourceCache, opts Options) *Lifecycle {
	return &Lifecycle{
		spec:         spec,
		reservations: deps.Reservations,
		resources:    deps.Resources,
		employees:    deps.Employees,
		timeslots:    calendar.NewTimeslotCatalog(deps.Timeslots),
		validator:    policy.ForKind(spec.Kind, calendar.NewHolidayCalendar(deps.Holidays)),
		catalog:      catalog,
		locks:        locks,
		idGenerator:  opts.IDGenerator,
		now:          opts.Now,
		location:     opts.Location,
		timeout:      opts.StoreTimeout,
	}
}

// Kind returns the resource kind this lifecycle manages.
func (l *Lifecycle) Kind() booking.Kind {
	return l.spec.Kind
}

// Today is the current date in the configured booking time zone.
func (l *Lifecycle) Today() time.Time {
	return booking.DateOf(l.now().In(l.location))
}

// Create validates and stores a new reservation.
func (l *Lifecycle) Create(ctx context.Context, params CreateReservationParams) (booking.Reservation, error) {
	vErr := &ValidationError{}
	employeeID := strings.TrimSpace(params.EmployeeID)
	resourceID := strings.TrimSpace(params.ResourceID)
	if employeeID == "" {
		vErr.add("employee_id", "employee id is required")
	}
	if resourceID == "" {
		vErr.add("resource_id", "resource id is required")
	}
	if params.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	vErr.merge(validateIntervalChoice(params.Interval, params.TimeslotID != ""))
	if vErr.HasErrors() {
		return booking.Reservation{}, vErr
	}

	interval, err := l.resolveInterval(ctx, params.Interval, params.TimeslotID)
	if err != nil {
		return booking.Reservation{}, err
	}
	date := booking.DateOf(params.Date)

	role, err := l.role(ctx, employeeID)
	if err != nil {
		return booking.Reservation{}, err
	}
	if err := l.ensureResource(ctx, resourceID); err != nil {
		return booking.Reservation{}, err
	}
	if err := l.checkPolicy(ctx, role, date); err != nil {
		return booking.Reservation{}, err
	}

	candidate := booking.Reservation{
		ID:         l.idGenerator(),
		Kind:       l.spec.Kind,
		EmployeeID: employeeID,
		ResourceID: resourceID,
		Date:       date,
		Interval:   interval,
		TimeslotID: params.TimeslotID,
	}

	release, err := l.lock(ctx, l.lockKeys(candidate)...)
	if err != nil {
		return booking.Reservation{}, err
	}
	defer release()

	if err := l.checkCandidate(ctx, candidate); err != nil {
		return booking.Reservation{}, err
	}
	now := l.now()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if err := l.save(ctx, candidate); err != nil {
		return booking.Reservation{}, err
	}
	return candidate, nil
}

// Update applies a patch to an existing reservation, re-running every check
// against the result while ignoring the reservation itself.
func (l *Lifecycle) Update(ctx context.Context, params UpdateReservationParams) (booking.Reservation, error) {
	id := strings.TrimSpace(params.ReservationID)
	patch := params.Patch

	vErr := &ValidationError{}
	if id == "" {
		vErr.add("id", "reservation id is required")
	}
	if patch.EmployeeID != nil && strings.TrimSpace(*patch.EmployeeID) == "" {
		vErr.add("employee_id", "employee id cannot be empty")
	}
	if patch.ResourceID != nil && strings.TrimSpace(*patch.ResourceID) == "" {
		vErr.add("resource_id", "resource id cannot be empty")
	}
	if patch.Date != nil && patch.Date.IsZero() {
		vErr.add("date", "date cannot be empty")
	}
	if patch.Interval != nil || patch.TimeslotID != nil {
		vErr.merge(validateIntervalChoice(patch.Interval, patch.TimeslotID != nil))
	}
	if vErr.HasErrors() {
		return booking.Reservation{}, vErr
	}

	var slot *booking.Interval
	if patch.TimeslotID != nil {
		interval, err := l.resolveInterval(ctx, nil, *patch.TimeslotID)
		if err != nil {
			return booking.Reservation{}, err
		}
		slot = &interval
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		existing, err := l.load(ctx, id)
		if err != nil {
			return booking.Reservation{}, err
		}
		if err := l.authorize(ctx, params.ActorID, existing, patch); err != nil {
			return booking.Reservation{}, err
		}

		candidate := applyPatch(existing, patch, slot)
		role, err := l.role(ctx, candidate.EmployeeID)
		if err != nil {
			return booking.Reservation{}, err
		}
		if candidate.ResourceID != existing.ResourceID {
			if err := l.ensureResource(ctx, candidate.ResourceID); err != nil {
				return booking.Reservation{}, err
			}
		}
		if err := l.checkPolicy(ctx, role, candidate.Date); err != nil {
			return booking.Reservation{}, err
		}

		keys := append(l.lockKeys(existing), l.lockKeys(candidate)...)
		release, err := l.lock(ctx, keys...)
		if err != nil {
			return booking.Reservation{}, err
		}

		current, err := l.load(ctx, id)
		if err != nil {
			release()
			return booking.Reservation{}, err
		}
		if !sameLockScope(current, existing) {
			release()
			continue
		}

		candidate = applyPatch(current, patch, slot)
		candidate.UpdatedAt = l.now()
		if err := l.checkCandidate(ctx, candidate); err != nil {
			release()
			return booking.Reservation{}, err
		}
		err = l.save(ctx, candidate)
		release()
		if err != nil {
			return booking.Reservation{}, err
		}
		return candidate, nil
	}
	return booking.Reservation{}, &booking.StorageError{Op: "update reservation", Err: errContention}
}

// Cancel deletes a reservation.
func (l *Lifecycle) Cancel(ctx context.Context, params CancelReservationParams) error {
	id := strings.TrimSpace(params.ReservationID)
	if id == "" {
		return &ValidationError{FieldErrors: map[string]string{"id": "reservation id is required"}}
	}

	existing, err := l.load(ctx, id)
	if err != nil {
		return err
	}
	if err := l.authorize(ctx, params.ActorID, existing, ReservationPatch{}); err != nil {
		return err
	}

	release, err := l.lock(ctx, l.lockKeys(existing)...)
	if err != nil {
		return err
	}
	defer release()

	exists, err := call(ctx, l.timeout, func(ctx context.Context) (bool, error) {
		return l.reservations.ReservationExists(ctx, id)
	})
	if err != nil {
		return storageError("check reservation", err)
	}
	if !exists {
		return notFound("reservation", id)
	}
	_, err = call(ctx, l.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.reservations.DeleteReservation(ctx, id)
	})
	if err != nil {
		return mapLookupError("delete reservation", "reservation", id, err)
	}
	return nil
}

// Get returns a single reservation.
func (l *Lifecycle) Get(ctx context.Context, id string) (booking.Reservation, error) {
	return l.load(ctx, strings.TrimSpace(id))
}

// List returns reservations of this kind matching params.
func (l *Lifecycle) List(ctx context.Context, params ListReservationsParams) ([]booking.Reservation, error) {
	filter := persistence.ReservationFilter{
		Kind:       l.spec.Kind,
		EmployeeID: strings.TrimSpace(params.EmployeeID),
		ResourceID: strings.TrimSpace(params.ResourceID),
		From:       params.From,
		To:         params.To,
	}
	reservations, err := call(ctx, l.timeout, func(ctx context.Context) ([]booking.Reservation, error) {
		return l.reservations.ListReservations(ctx, filter)
	})
	if err != nil {
		return nil, storageError("list reservations", err)
	}
	return reservations, nil
}

// History returns the employee's reservations from the last two weeks up to today.
func (l *Lifecycle) History(ctx context.Context, employeeID string) ([]booking.Reservation, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, &ValidationError{FieldErrors: map[string]string{"employee_id": "employee id is required"}}
	}
	to := l.Today()
	from := to.AddDate(0, 0, -historyDays)
	return l.List(ctx, ListReservationsParams{EmployeeID: employeeID, From: &from, To: &to})
}

// FindAvailable returns the resources free for the query's interval. With a
// ResourceID it answers for that resource alone.
func (l *Lifecycle) FindAvailable(ctx context.Context, query AvailabilityQuery) ([]string, error) {
	vErr := &ValidationError{}
	if query.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	vErr.merge(validateIntervalChoice(query.Interval, query.TimeslotID != ""))
	if vErr.HasErrors() {
		return nil, vErr
	}
	interval, err := l.resolveInterval(ctx, query.Interval, query.TimeslotID)
	if err != nil {
		return nil, err
	}
	date := booking.DateOf(query.Date)

	if hint := strings.TrimSpace(query.ResourceID); hint != "" {
		available, err := l.IsAvailable(ctx, hint, date, interval)
		if err != nil {
			return nil, err
		}
		if available {
			return []string{hint}, nil
		}
		return []string{}, nil
	}

	ids, err := l.resourceIDs(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := call(ctx, l.timeout, func(ctx context.Context) ([]booking.Reservation, error) {
		return l.reservations.FindReservationsByDate(ctx, l.spec.Kind, date)
	})
	if err != nil {
		return nil, storageError("load reservations", err)
	}
	return scheduler.FindAvailableResources(ids, date, interval, scheduler.GroupByResource(existing)), nil
}

// ListAvailable returns every resource free for interval on date.
func (l *Lifecycle) ListAvailable(ctx context.Context, date time.Time, interval booking.Interval) ([]string, error) {
	return l.FindAvailable(ctx, AvailabilityQuery{Kind: l.spec.Kind, Date: date, Interval: &interval})
}

// IsAvailable reports whether resourceID is free for interval on date.
func (l *Lifecycle) IsAvailable(ctx context.Context, resourceID string, date time.Time, interval booking.Interval) (bool, error) {
	if !interval.Valid() {
		return false, &ValidationError{FieldErrors: map[string]string{"interval": "start must be before end"}}
	}
	if err := l.ensureResource(ctx, resourceID); err != nil {
		return false, err
	}
	existing, err := l.reservationsOn(ctx, resourceID, date)
	if err != nil {
		return false, err
	}
	return scheduler.IsResourceAvailable(resourceID, date, interval, existing), nil
}

// FreeSlots returns the unreserved gaps of a resource inside window.
func (l *Lifecycle) FreeSlots(ctx context.Context, resourceID string, date time.Time, window booking.Interval) ([]booking.Interval, error) {
	if !window.Valid() {
		return nil, &ValidationError{FieldErrors: map[string]string{"interval": "start must be before end"}}
	}
	if err := l.ensureResource(ctx, resourceID); err != nil {
		return nil, err
	}
	existing, err := l.reservationsOn(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	return scheduler.FreeIntervals(window, existing), nil
}

// --- helpers ---

func validateIntervalChoice(interval *booking.Interval, hasTimeslot bool) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case interval != nil && hasTimeslot:
		vErr.add("interval", "provide either an interval or a timeslot, not both")
	case interval == nil && !hasTimeslot:
		vErr.add("interval", "an interval or a timeslot is required")
	case interval != nil && !interval.Valid():
		vErr.add("interval", "start must be before end and within the day")
	}
	return vErr
}

func (l *Lifecycle) resolveInterval(ctx context.Context, interval *booking.Interval, timeslotID string) (booking.Interval, error) {
	if interval != nil {
		return *interval, nil
	}
	resolved, err := call(ctx, l.timeout, func(ctx context.Context) (booking.Interval, error) {
		return l.timeslots.Resolve(ctx, timeslotID)
	})
	if err != nil {
		return booking.Interval{}, storageError("resolve timeslot", err)
	}
	return resolved, nil
}

// role resolves the employee's role. Unknown role values fall back to the
// most restricted role.
func (l *Lifecycle) role(ctx context.Context, employeeID string) (booking.Role, error) {
	role, err := call(ctx, l.timeout, func(ctx context.Context) (booking.Role, error) {
		return l.employees.GetRole(ctx, employeeID)
	})
	if err != nil {
		return "", mapLookupError("load employee", "employee", employeeID, err)
	}
	if !role.Valid() {
		return booking.RoleNormal, nil
	}
	return role, nil
}

func (l *Lifecycle) ensureResource(ctx context.Context, resourceID string) error {
	_, err := call(ctx, l.timeout, func(ctx context.Context) (booking.Resource, error) {
		return l.resources.GetResource(ctx, l.spec.Kind, resourceID)
	})
	if err != nil {
		return mapLookupError("load resource", string(l.spec.Kind)+" resource", resourceID, err)
	}
	return nil
}

func (l *Lifecycle) resourceIDs(ctx context.Context) ([]string, error) {
	if ids, ok := l.catalog.Get(l.spec.Kind); ok {
		return ids, nil
	}
	resources, err := call(ctx, l.timeout, func(ctx context.Context) ([]booking.Resource, error) {
		return l.resources.ListResources(ctx, l.spec.Kind)
	})
	if err != nil {
		return nil, storageError("list resources", err)
	}
	ids := make([]string, 0, len(resources))
	for _, r := range resources {
		ids = append(ids, r.ID)
	}
	l.catalog.Store(l.spec.Kind, ids)
	return ids, nil
}

func (l *Lifecycle) checkPolicy(ctx context.Context, role booking.Role, date time.Time) error {
	err := l.validator.Validate(ctx, policy.Request{
		Kind:  l.spec.Kind,
		Role:  role,
		Date:  date,
		Today: l.Today(),
	})
	if err != nil {
		return storageError("load holiday", err)
	}
	return nil
}

// checkCandidate runs the checks that must happen under the locks.
func (l *Lifecycle) checkCandidate(ctx context.Context, candidate booking.Reservation) error {
	if l.spec.OnePerEmployeePerDay {
		mine, err := call(ctx, l.timeout, func(ctx context.Context) ([]booking.Reservation, error) {
			return l.reservations.FindReservationsByEmployeeAndDate(ctx, l.spec.Kind, candidate.EmployeeID, candidate.Date)
		})
		if err != nil {
			return storageError("load employee reservations", err)
		}
		for _, r := range mine {
			if r.ID != candidate.ID {
				return booking.NewPolicyViolation(booking.ReasonEmployeeAlreadyBooked, candidate.Date)
			}
		}
	}

	existing, err := l.reservationsOn(ctx, candidate.ResourceID, candidate.Date)
	if err != nil {
		return err
	}
	if conflicts := scheduler.FindConflicts(candidate.ResourceID, candidate.Date, candidate.Interval, existing, candidate.ID); len(conflicts) > 0 {
		return l.conflictError(candidate, conflicts)
	}
	return nil
}

func (l *Lifecycle) conflictError(candidate booking.Reservation, conflicts []booking.Reservation) *booking.ConflictError {
	return &booking.ConflictError{
		Resource:  candidate.Resource(),
		Date:      candidate.Date,
		Interval:  candidate.Interval,
		Conflicts: conflicts,
	}
}

func (l *Lifecycle) reservationsOn(ctx context.Context, resourceID string, date time.Time) ([]booking.Reservation, error) {
	existing, err := call(ctx, l.timeout, func(ctx context.Context) ([]booking.Reservation, error) {
		return l.reservations.FindReservationsByResourceAndDate(ctx, l.spec.Kind, resourceID, booking.DateOf(date))
	})
	if err != nil {
		return nil, storageError("load reservations", err)
	}
	return existing, nil
}

// save writes the reservation and maps constraint failures raised by the
// store back to domain errors.
func (l *Lifecycle) save(ctx context.Context, candidate booking.Reservation) error {
	_, err := call(ctx, l.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.reservations.SaveReservation(ctx, candidate)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrConflict):
		existing, lerr := l.reservationsOn(ctx, candidate.ResourceID, candidate.Date)
		if lerr != nil {
			return l.conflictError(candidate, nil)
		}
		return l.conflictError(candidate, scheduler.FindConflicts(candidate.ResourceID, candidate.Date, candidate.Interval, existing, candidate.ID))
	case errors.Is(err, persistence.ErrDuplicate) && l.spec.OnePerEmployeePerDay:
		return booking.NewPolicyViolation(booking.ReasonEmployeeAlreadyBooked, candidate.Date)
	case errors.Is(err, persistence.ErrNotFound):
		return notFound("reservation", candidate.ID)
	case errors.Is(err, persistence.ErrConstraintViolation):
		return &ValidationError{FieldErrors: map[string]string{"interval": "rejected by storage constraints"}}
	}
	return storageError("save reservation", err)
}

func (l *Lifecycle) load(ctx context.Context, id string) (booking.Reservation, error) {
	if id == "" {
		return booking.Reservation{}, &ValidationError{FieldErrors: map[string]string{"id": "reservation id is required"}}
	}
	r, err := call(ctx, l.timeout, func(ctx context.Context) (booking.Reservation, error) {
		return l.reservations.FindReservationByID(ctx, id)
	})
	if err != nil {
		return booking.Reservation{}, mapLookupError("load reservation", "reservation", id, err)
	}
	if r.Kind != l.spec.Kind {
		return booking.Reservation{}, notFound("reservation", id)
	}
	return r, nil
}

// authorize lets an empty actor through; otherwise the owner may change their
// own reservation and roles that can reassign may change anyone's.
func (l *Lifecycle) authorize(ctx context.Context, actorID string, existing booking.Reservation, patch ReservationPatch) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil
	}
	reassigning := patch.EmployeeID != nil && strings.TrimSpace(*patch.EmployeeID) != existing.EmployeeID
	if actorID == existing.EmployeeID && !reassigning {
		return nil
	}
	role, err := l.role(ctx, actorID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if !role.CanReassign() {
		return ErrUnauthorized
	}
	return nil
}

func (l *Lifecycle) lockKeys(r booking.Reservation) []string {
	keys := []string{
		reservationLockKey(r.ID),
		resourceLockKey(l.spec.Kind, r.ResourceID, r.Date),
	}
	if l.spec.OnePerEmployeePerDay {
		keys = append(keys, employeeLockKey(l.spec.Kind, r.EmployeeID, r.Date))
	}
	return keys
}

func (l *Lifecycle) lock(ctx context.Context, keys ...string) (func(), error) {
	lockCtx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()
	release, err := l.locks.Lock(lockCtx, keys...)
	if err != nil {
		return nil, &booking.StorageError{Op: "acquire lock", Err: err}
	}
	return release, nil
}

func applyPatch(r booking.Reservation, patch ReservationPatch, slot *booking.Interval) booking.Reservation {
	if patch.EmployeeID != nil {
		r.EmployeeID = strings.TrimSpace(*patch.EmployeeID)
	}
	if patch.ResourceID != nil {
		r.ResourceID = strings.TrimSpace(*patch.ResourceID)
	}
	if patch.Date != nil {
		r.Date = booking.DateOf(*patch.Date)
	}
	switch {
	case patch.TimeslotID != nil && slot != nil:
		r.Interval = *slot
		r.TimeslotID = *patch.TimeslotID
	case patch.Interval != nil:
		r.Interval = *patch.Interval
		r.TimeslotID = ""
	}
	return r
}

func sameLockScope(a, b booking.Reservation) bool {
	return a.EmployeeID == b.EmployeeID && a.ResourceID == b.ResourceID && a.Date.Equal(b.Date)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// call runs a single store operation under the configured timeout.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

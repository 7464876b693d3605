package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// ReferenceRepository stores the resource catalogue, employee directory,
// holiday calendar and timeslots.
type ReferenceRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewReferenceRepository creates a new SQLite reference data repository.
func NewReferenceRepository(pool *ConnectionPool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool, mapper: NewErrorMapper()}
}

// GetResource returns a catalogue entry.
func (r *ReferenceRepository) GetResource(ctx context.Context, kind booking.Kind, id string) (booking.Resource, error) {
	resource := booking.Resource{Kind: kind}
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, name FROM resources WHERE kind = ? AND id = ?`, string(kind), id,
	).Scan(&resource.ID, &resource.Name)
	if err != nil {
		return booking.Resource{}, r.mapper.MapError(err)
	}
	return resource, nil
}

// ListResources returns every resource of kind ordered by ID.
func (r *ReferenceRepository) ListResources(ctx context.Context, kind booking.Kind) ([]booking.Resource, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name FROM resources WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	resources := make([]booking.Resource, 0)
	for rows.Next() {
		resource := booking.Resource{Kind: kind}
		if err := rows.Scan(&resource.ID, &resource.Name); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

// UpsertResource adds or replaces a catalogue entry.
func (r *ReferenceRepository) UpsertResource(ctx context.Context, resource booking.Resource) error {
	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO resources (kind, id, name) VALUES (?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET name = excluded.name`,
		string(resource.Kind), resource.ID, resource.Name,
	)
	return r.mapper.MapError(err)
}

// GetEmployee returns a directory entry.
func (r *ReferenceRepository) GetEmployee(ctx context.Context, id string) (booking.Employee, error) {
	var (
		employee booking.Employee
		role     string
	)
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, name, role FROM employees WHERE id = ?`, id,
	).Scan(&employee.ID, &employee.Name, &role)
	if err != nil {
		return booking.Employee{}, r.mapper.MapError(err)
	}
	employee.Role = booking.Role(role)
	return employee, nil
}

// GetRole returns the role of an employee.
func (r *ReferenceRepository) GetRole(ctx context.Context, employeeID string) (booking.Role, error) {
	employee, err := r.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return employee.Role, nil
}

// UpsertEmployee adds or replaces a directory entry.
func (r *ReferenceRepository) UpsertEmployee(ctx context.Context, employee booking.Employee) error {
	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO employees (id, name, role) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, role = excluded.role`,
		employee.ID, employee.Name, string(employee.Role),
	)
	return r.mapper.MapError(err)
}

// FindHolidayByDate returns the holiday on date, or persistence.ErrNotFound.
func (r *ReferenceRepository) FindHolidayByDate(ctx context.Context, date time.Time) (booking.Holiday, error) {
	holiday := booking.Holiday{Date: booking.DateOf(date)}
	var allowed int
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT description, booking_allowed FROM holidays WHERE holiday_date = ?`, booking.FormatDate(date),
	).Scan(&holiday.Description, &allowed)
	if err != nil {
		return booking.Holiday{}, r.mapper.MapError(err)
	}
	holiday.BookingAllowed = allowed != 0
	return holiday, nil
}

// ListHolidays returns every holiday ordered by date.
func (r *ReferenceRepository) ListHolidays(ctx context.Context) ([]booking.Holiday, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT holiday_date, description, booking_allowed FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	holidays := make([]booking.Holiday, 0)
	for rows.Next() {
		var (
			holiday booking.Holiday
			date    string
			allowed int
		)
		if err := rows.Scan(&date, &holiday.Description, &allowed); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if holiday.Date, err = booking.ParseDate(date); err != nil {
			return nil, err
		}
		holiday.BookingAllowed = allowed != 0
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

// UpsertHoliday adds or replaces the holiday on its date.
func (r *ReferenceRepository) UpsertHoliday(ctx context.Context, holiday booking.Holiday) error {
	allowed := 0
	if holiday.BookingAllowed {
		allowed = 1
	}
	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO holidays (holiday_date, description, booking_allowed) VALUES (?, ?, ?)
		ON CONFLICT (holiday_date) DO UPDATE SET description = excluded.description, booking_allowed = excluded.booking_allowed`,
		booking.FormatDate(holiday.Date), holiday.Description, allowed,
	)
	return r.mapper.MapError(err)
}

// DeleteHoliday removes the holiday on date.
func (r *ReferenceRepository) DeleteHoliday(ctx context.Context, date time.Time) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM holidays WHERE holiday_date = ?`, booking.FormatDate(date))
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindTimeslotByID returns a predefined timeslot.
func (r *ReferenceRepository) FindTimeslotByID(ctx context.Context, id string) (booking.Timeslot, error) {
	var (
		ts         booking.Timeslot
		start, end int
	)
	err := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, name, start_minute, end_minute FROM timeslots WHERE id = ?`, id,
	).Scan(&ts.ID, &ts.Name, &start, &end)
	if err != nil {
		return booking.Timeslot{}, r.mapper.MapError(err)
	}
	ts.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
	return ts, nil
}

// ListTimeslots returns every timeslot ordered by start.
func (r *ReferenceRepository) ListTimeslots(ctx context.Context) ([]booking.Timeslot, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, start_minute, end_minute FROM timeslots ORDER BY start_minute, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	timeslots := make([]booking.Timeslot, 0)
	for rows.Next() {
		var (
			ts         booking.Timeslot
			start, end int
		)
		if err := rows.Scan(&ts.ID, &ts.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan timeslot: %w", err)
		}
		ts.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
		timeslots = append(timeslots, ts)
	}
	return timeslots, rows.Err()
}

// UpsertTimeslot adds or replaces a timeslot.
func (r *ReferenceRepository) UpsertTimeslot(ctx context.Context, timeslot booking.Timeslot) error {
	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO timeslots (id, name, start_minute, end_minute) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, start_minute = excluded.start_minute, end_minute = excluded.end_minute`,
		timeslot.ID, timeslot.Name, int(timeslot.Interval.Start), int(timeslot.Interval.End),
	)
	return r.mapper.MapError(err)
}

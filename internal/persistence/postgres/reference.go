package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// GetResource returns a catalogue entry.
func (s *Storage) GetResource(ctx context.Context, kind booking.Kind, id string) (booking.Resource, error) {
	resource := booking.Resource{Kind: kind}
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM resources WHERE kind = $1 AND id = $2`, string(kind), id).
		Scan(&resource.ID, &resource.Name)
	if err != nil {
		return booking.Resource{}, mapError(err)
	}
	return resource, nil
}

// ListResources returns every resource of kind ordered by ID.
func (s *Storage) ListResources(ctx context.Context, kind booking.Kind) ([]booking.Resource, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM resources WHERE kind = $1 ORDER BY id`, string(kind))
	if err != nil {
		return nil, mapError(err)
	}
	resources, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.Resource, error) {
		resource := booking.Resource{Kind: kind}
		err := row.Scan(&resource.ID, &resource.Name)
		return resource, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// UpsertResource adds or replaces a catalogue entry.
func (s *Storage) UpsertResource(ctx context.Context, resource booking.Resource) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resources (kind, id, name) VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET name = EXCLUDED.name`,
		string(resource.Kind), resource.ID, resource.Name,
	)
	return mapError(err)
}

// GetEmployee returns a directory entry.
func (s *Storage) GetEmployee(ctx context.Context, id string) (booking.Employee, error) {
	var (
		employee booking.Employee
		role     string
	)
	err := s.pool.QueryRow(ctx, `SELECT id, name, role FROM employees WHERE id = $1`, id).
		Scan(&employee.ID, &employee.Name, &role)
	if err != nil {
		return booking.Employee{}, mapError(err)
	}
	employee.Role = booking.Role(role)
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
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, role) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role`,
		employee.ID, employee.Name, string(employee.Role),
	)
	return mapError(err)
}

// FindHolidayByDate returns the holiday on date, or persistence.ErrNotFound.
func (s *Storage) FindHolidayByDate(ctx context.Context, date time.Time) (booking.Holiday, error) {
	holiday := booking.Holiday{Date: booking.DateOf(date)}
	err := s.pool.QueryRow(ctx,
		`SELECT description, booking_allowed FROM holidays WHERE holiday_date = $1`, booking.DateOf(date),
	).Scan(&holiday.Description, &holiday.BookingAllowed)
	if err != nil {
		return booking.Holiday{}, mapError(err)
	}
	return holiday, nil
}

// ListHolidays returns every holiday ordered by date.
func (s *Storage) ListHolidays(ctx context.Context) ([]booking.Holiday, error) {
	rows, err := s.pool.Query(ctx, `SELECT holiday_date, description, booking_allowed FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, mapError(err)
	}
	holidays, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.Holiday, error) {
		var h booking.Holiday
		if err := row.Scan(&h.Date, &h.Description, &h.BookingAllowed); err != nil {
			return booking.Holiday{}, err
		}
		h.Date = booking.DateOf(h.Date)
		return h, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return holidays, nil
}

// UpsertHoliday adds or replaces the holiday on its date.
func (s *Storage) UpsertHoliday(ctx context.Context, holiday booking.Holiday) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO holidays (holiday_date, description, booking_allowed) VALUES ($1, $2, $3)
		ON CONFLICT (holiday_date) DO UPDATE SET description = EXCLUDED.description, booking_allowed = EXCLUDED.booking_allowed`,
		booking.DateOf(holiday.Date), holiday.Description, holiday.BookingAllowed,
	)
	return mapError(err)
}

// DeleteHoliday removes the holiday on date.
func (s *Storage) DeleteHoliday(ctx context.Context, date time.Time) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM holidays WHERE holiday_date = $1`, booking.DateOf(date))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindTimeslotByID returns a predefined timeslot.
func (s *Storage) FindTimeslotByID(ctx context.Context, id string) (booking.Timeslot, error) {
	var (
		ts         booking.Timeslot
		start, end int32
	)
	err := s.pool.QueryRow(ctx, `SELECT id, name, start_minute, end_minute FROM timeslots WHERE id = $1`, id).
		Scan(&ts.ID, &ts.Name, &start, &end)
	if err != nil {
		return booking.Timeslot{}, mapError(err)
	}
	ts.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
	return ts, nil
}

// ListTimeslots returns every timeslot ordered by start.
func (s *Storage) ListTimeslots(ctx context.Context) ([]booking.Timeslot, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, start_minute, end_minute FROM timeslots ORDER BY start_minute, id`)
	if err != nil {
		return nil, mapError(err)
	}
	timeslots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.Timeslot, error) {
		var (
			ts         booking.Timeslot
			start, end int32
		)
		if err := row.Scan(&ts.ID, &ts.Name, &start, &end); err != nil {
			return booking.Timeslot{}, err
		}
		ts.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
		return ts, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return timeslots, nil
}

// UpsertTimeslot adds or replaces a timeslot.
func (s *Storage) UpsertTimeslot(ctx context.Context, timeslot booking.Timeslot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO timeslots (id, name, start_minute, end_minute) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, start_minute = EXCLUDED.start_minute, end_minute = EXCLUDED.end_minute`,
		timeslot.ID, timeslot.Name, int(timeslot.Interval.Start), int(timeslot.Interval.End),
	)
	return mapError(err)
}

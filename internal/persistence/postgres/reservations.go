package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

const reservationColumns = `id, kind, employee_id, resource_id, booking_date, start_minute, end_minute, timeslot_id, created_at, updated_at`

// FindReservationByID returns a reservation by ID.
func (s *Storage) FindReservationByID(ctx context.Context, id string) (booking.Reservation, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	r, err := scanReservation(row)
	if err != nil {
		return booking.Reservation{}, mapError(err)
	}
	return r, nil
}

// FindReservationsByResourceAndDate returns reservations holding a resource on a date.
func (s *Storage) FindReservationsByResourceAndDate(ctx context.Context, kind booking.Kind, resourceID string, date time.Time) ([]booking.Reservation, error) {
	return s.query(ctx, `WHERE kind = $1 AND resource_id = $2 AND booking_date = $3`,
		string(kind), resourceID, booking.DateOf(date))
}

// FindReservationsByEmployeeAndDate returns an employee's reservations of one kind on a date.
func (s *Storage) FindReservationsByEmployeeAndDate(ctx context.Context, kind booking.Kind, employeeID string, date time.Time) ([]booking.Reservation, error) {
	return s.query(ctx, `WHERE kind = $1 AND employee_id = $2 AND booking_date = $3`,
		string(kind), employeeID, booking.DateOf(date))
}

// FindReservationsByDate returns every reservation of a kind on a date.
func (s *Storage) FindReservationsByDate(ctx context.Context, kind booking.Kind, date time.Time) ([]booking.Reservation, error) {
	return s.query(ctx, `WHERE kind = $1 AND booking_date = $2`, string(kind), booking.DateOf(date))
}

// ListReservations returns reservations matching filter.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]booking.Reservation, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.EmployeeID != "" {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if filter.ResourceID != "" {
		add("resource_id = $%d", filter.ResourceID)
	}
	if filter.From != nil {
		add("booking_date >= $%d", booking.DateOf(*filter.From))
	}
	if filter.To != nil {
		add("booking_date <= $%d", booking.DateOf(*filter.To))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	return s.query(ctx, where, args...)
}

// SaveReservation inserts or updates a reservation in one statement; the
// exclusion constraint and unique index guard concurrent writers.
func (s *Storage) SaveReservation(ctx context.Context, r booking.Reservation) error {
	if !r.Interval.Valid() {
		return persistence.ErrConstraintViolation
	}
	var timeslotID *string
	if r.TimeslotID != "" {
		timeslotID = &r.TimeslotID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			employee_id = EXCLUDED.employee_id,
			resource_id = EXCLUDED.resource_id,
			booking_date = EXCLUDED.booking_date,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			timeslot_id = EXCLUDED.timeslot_id,
			updated_at = EXCLUDED.updated_at`,
		r.ID, string(r.Kind), r.EmployeeID, r.ResourceID, booking.DateOf(r.Date),
		int(r.Interval.Start), int(r.Interval.End), timeslotID, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	)
	return mapError(err)
}

// DeleteReservation removes a reservation.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ReservationExists reports whether a reservation with id is stored.
func (s *Storage) ReservationExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (s *Storage) query(ctx context.Context, where string, args ...any) ([]booking.Reservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations `+where+` ORDER BY booking_date, start_minute, id`,
		args...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	reservations := make([]booking.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, mapError(err)
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

func scanReservation(row pgx.Row) (booking.Reservation, error) {
	var (
		r          booking.Reservation
		kind       string
		start, end int32
		timeslotID *string
	)
	if err := row.Scan(&r.ID, &kind, &r.EmployeeID, &r.ResourceID, &r.Date,
		&start, &end, &timeslotID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return booking.Reservation{}, err
	}
	r.Kind = booking.Kind(kind)
	r.Date = booking.DateOf(r.Date)
	r.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
	if timeslotID != nil {
		r.TimeslotID = *timeslotID
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

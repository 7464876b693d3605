package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

const reservationColumns = `id, kind, employee_id, resource_id, booking_date, start_minute, end_minute, timeslot_id, created_at, updated_at`

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// FindReservationByID returns a reservation by ID.
func (r *ReservationRepository) FindReservationByID(ctx context.Context, id string) (booking.Reservation, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		return booking.Reservation{}, r.mapper.MapError(err)
	}
	return reservation, nil
}

// FindReservationsByResourceAndDate returns reservations holding a resource on a date.
func (r *ReservationRepository) FindReservationsByResourceAndDate(ctx context.Context, kind booking.Kind, resourceID string, date time.Time) ([]booking.Reservation, error) {
	return r.query(ctx,
		`WHERE kind = ? AND resource_id = ? AND booking_date = ?`,
		string(kind), resourceID, booking.FormatDate(date),
	)
}

// FindReservationsByEmployeeAndDate returns an employee's reservations of one kind on a date.
func (r *ReservationRepository) FindReservationsByEmployeeAndDate(ctx context.Context, kind booking.Kind, employeeID string, date time.Time) ([]booking.Reservation, error) {
	return r.query(ctx,
		`WHERE kind = ? AND employee_id = ? AND booking_date = ?`,
		string(kind), employeeID, booking.FormatDate(date),
	)
}

// FindReservationsByDate returns every reservation of a kind on a date.
func (r *ReservationRepository) FindReservationsByDate(ctx context.Context, kind booking.Kind, date time.Time) ([]booking.Reservation, error) {
	return r.query(ctx, `WHERE kind = ? AND booking_date = ?`, string(kind), booking.FormatDate(date))
}

// ListReservations returns reservations matching filter.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]booking.Reservation, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.EmployeeID != "" {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.ResourceID != "" {
		clauses = append(clauses, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.From != nil {
		clauses = append(clauses, "booking_date >= ?")
		args = append(args, booking.FormatDate(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "booking_date <= ?")
		args = append(args, booking.FormatDate(*filter.To))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	return r.query(ctx, where, args...)
}

// SaveReservation inserts or updates a reservation. Overlaps surface as
// persistence.ErrConflict and a second desk per employee and day as
// persistence.ErrDuplicate.
func (r *ReservationRepository) SaveReservation(ctx context.Context, reservation booking.Reservation) error {
	if !reservation.Interval.Valid() {
		return persistence.ErrConstraintViolation
	}

	var timeslotID sql.NullString
	if reservation.TimeslotID != "" {
		timeslotID = sql.NullString{String: reservation.TimeslotID, Valid: true}
	}
	date := booking.FormatDate(reservation.Date)
	created := reservation.CreatedAt.UTC().Format(timestampLayout)
	updated := reservation.UpdatedAt.UTC().Format(timestampLayout)

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, reservation.ID).Scan(&exists)
			switch {
			case err == sql.ErrNoRows:
				_, err = tx.ExecContext(ctx, `
					INSERT INTO reservations (`+reservationColumns+`)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					reservation.ID, string(reservation.Kind), reservation.EmployeeID, reservation.ResourceID,
					date, int(reservation.Interval.Start), int(reservation.Interval.End), timeslotID, created, updated,
				)
			case err == nil:
				_, err = tx.ExecContext(ctx, `
					UPDATE reservations
					SET kind = ?, employee_id = ?, resource_id = ?, booking_date = ?,
						start_minute = ?, end_minute = ?, timeslot_id = ?, updated_at = ?
					WHERE id = ?`,
					string(reservation.Kind), reservation.EmployeeID, reservation.ResourceID, date,
					int(reservation.Interval.Start), int(reservation.Interval.End), timeslotID, updated,
					reservation.ID,
				)
			}
			return err
		})
	})
}

// DeleteReservation removes a reservation.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
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

// ReservationExists reports whether a reservation with id is stored.
func (r *ReservationRepository) ReservationExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := r.pool.DB().QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return true, nil
}

func (r *ReservationRepository) query(ctx context.Context, where string, args ...any) ([]booking.Reservation, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations `+where+` ORDER BY booking_date, start_minute, id`,
		args...,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	reservations := make([]booking.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (booking.Reservation, error) {
	var (
		reservation booking.Reservation
		kind        string
		date        string
		start, end  int
		timeslotID  sql.NullString
		created     string
		updated     string
	)
	if err := row.Scan(&reservation.ID, &kind, &reservation.EmployeeID, &reservation.ResourceID,
		&date, &start, &end, &timeslotID, &created, &updated); err != nil {
		return booking.Reservation{}, err
	}

	parsedDate, err := booking.ParseDate(date)
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("failed to parse booking_date: %w", err)
	}
	createdAt, err := time.Parse(timestampLayout, created)
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(timestampLayout, updated)
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	reservation.Kind = booking.Kind(kind)
	reservation.Date = parsedDate
	reservation.Interval = booking.Interval{Start: booking.TimeOfDay(start), End: booking.TimeOfDay(end)}
	reservation.TimeslotID = timeslotID.String
	reservation.CreatedAt = createdAt
	reservation.UpdatedAt = updatedAt
	return reservation, nil
}

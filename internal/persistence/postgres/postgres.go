// Package postgres implements persistence.Store on PostgreSQL. Overlaps are
// rejected by an exclusion constraint over int4range(start, end), which is
// half-open like the booking intervals, and the desk-per-day rule by a
// partial unique index.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/workspace-booking/internal/persistence"
)

//go:embed schema.sql
var schemaSQL string

// Storage is a PostgreSQL-backed persistence.Store.
type Storage struct {
	pool *pgxpool.Pool
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to databaseURL.
func Open(ctx context.Context, databaseURL string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// Migrate creates the schema. It is safe to run repeatedly.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// PostgreSQL error codes mapped onto persistence sentinels.
const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
	codeCheckViolation     = "23514"
	codeNotNullViolation   = "23502"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeExclusionViolation:
			return fmt.Errorf("%w: %s", persistence.ErrConflict, pgErr.Message)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", persistence.ErrDuplicate, pgErr.Message)
		case codeCheckViolation, codeNotNullViolation:
			return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, pgErr.Message)
		}
	}
	return fmt.Errorf("postgres: %w", err)
}

// Reset deletes every row. Tests use it to start from an empty schema.
func (s *Storage) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE reservations, timeslots, holidays, resources, employees`)
	return mapError(err)
}

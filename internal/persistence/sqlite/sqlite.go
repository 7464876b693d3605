// Package sqlite implements persistence.Store on SQLite. Overlapping
// reservations are rejected by triggers and the desk-per-day rule by a
// partial unique index, so the guarantees hold across processes.
package sqlite

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const timestampLayout = time.RFC3339Nano

// Storage is a SQLite-backed persistence.Store.
type Storage struct {
	*ReservationRepository
	*ReferenceRepository

	pool *ConnectionPool
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to the database at dsn with default settings.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn))
}

// OpenWithConfig connects using an explicit configuration.
func OpenWithConfig(config migration.SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		ReservationRepository: NewReservationRepository(pool),
		ReferenceRepository:   NewReferenceRepository(pool),
		pool:                  pool,
	}, nil
}

// Migrate applies pending schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := s.migrationManager(logger)
	_, err := manager.Run(ctx)
	return err
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.migrationManager(nil).Status(ctx)
}

func (s *Storage) migrationManager(logger *slog.Logger) *migration.Manager {
	return migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logger,
	)
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/config"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/memory"
	"github.com/example/workspace-booking/internal/persistence/postgres"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

// store is a persistence.Store that owns a connection.
type store interface {
	persistence.Store
	Close() error
}

// openStorage opens the configured backend and brings its schema up to date.
// The memory backend starts with the embedded demo data.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		s := memory.New()
		data, err := demoSeed()
		if err != nil {
			return nil, err
		}
		if err := persistence.Seed(ctx, s, data); err != nil {
			return nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		return s, nil
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		if err := s.Migrate(ctx, logger); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return s, nil
	case config.StoragePostgres:
		s, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage)
}

func newBookingService(s persistence.Store, cfg config.Config, logger *slog.Logger) *application.BookingService {
	return application.NewBookingService(application.DependenciesFromStore(s), application.Options{
		IDGenerator:  uuid.NewString,
		Location:     cfg.Location,
		StoreTimeout: cfg.StoreTimeout,
		CatalogTTL:   cfg.CatalogTTL,
		Logger:       logger,
	})
}

func closeStorage(s store, logger *slog.Logger) {
	if err := s.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
	}
}

package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
	"github.com/example/workspace-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated SQLite database in a temporary file. Storage is
// the connection opened by the harness; OpenService attaches further
// connections to the same file, standing in for separate processes.
type SQLiteHarness struct {
	Storage *sqlite.Storage
	Path    string
}

// NewSQLiteHarness migrates an empty database and closes it with the test.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	storage := openSQLite(tb, path)
	if err := storage.Migrate(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return &SQLiteHarness{Storage: storage, Path: path}
}

// NewSeededSQLiteHarness is NewSQLiteHarness loaded with StandardSeed.
func NewSeededSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()
	h := NewSQLiteHarness(tb)
	if err := persistence.Seed(context.Background(), h.Storage, StandardSeed()); err != nil {
		tb.Fatalf("failed to seed storage: %v", err)
	}
	return h
}

// OpenService opens a new connection to the harness database and returns a
// booking service over it with its own lock set.
func (h *SQLiteHarness) OpenService(tb testing.TB, factory *ServiceFactory) *application.BookingService {
	tb.Helper()
	if factory == nil {
		factory = NewServiceFactory()
	}
	storage := openSQLite(tb, h.Path)
	return factory.NewBookingService(BookingServiceDeps{
		Dependencies: application.DependenciesFromStore(storage),
	})
}

func openSQLite(tb testing.TB, path string) *sqlite.Storage {
	tb.Helper()
	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })
	return storage
}

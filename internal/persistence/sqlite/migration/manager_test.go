package migration

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubScanner struct {
	migrations []Migration
	err        error
}

func (s stubScanner) Scan() ([]Migration, error) {
	return s.migrations, s.err
}

type recordingExecutor struct {
	applied  []AppliedMigration
	executed []string
	failOn   string
}

func (e *recordingExecutor) InitializeVersionTable(ctx context.Context) error {
	return nil
}

func (e *recordingExecutor) ExecuteMigration(ctx context.Context, m Migration) (time.Duration, error) {
	if m.Version == e.failOn {
		return 0, errors.New("syntax error")
	}
	e.executed = append(e.executed, m.Version)
	e.applied = append(e.applied, AppliedMigration{Version: m.Version, Checksum: m.Checksum})
	return time.Millisecond, nil
}

func (e *recordingExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	return e.applied, nil
}

func migrations(versions ...string) []Migration {
	out := make([]Migration, 0, len(versions))
	for _, v := range versions {
		out = append(out, Migration{Version: v, Checksum: "sum-" + v, FilePath: v + "_x.sql"})
	}
	return out
}

func TestManagerRunAppliesPendingOnly(t *testing.T) {
	executor := &recordingExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "sum-001"}}}
	manager := NewManager(stubScanner{migrations: migrations("001", "002", "003")}, executor, nil)

	applied, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied, got %d", applied)
	}
	if len(executor.executed) != 2 || executor.executed[0] != "002" || executor.executed[1] != "003" {
		t.Fatalf("unexpected execution order: %v", executor.executed)
	}

	status, err := manager.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.CurrentVersion != "003" || len(status.Pending) != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestManagerRunStopsOnFailure(t *testing.T) {
	executor := &recordingExecutor{failOn: "002"}
	manager := NewManager(stubScanner{migrations: migrations("001", "002", "003")}, executor, nil)

	applied, err := manager.Run(context.Background())
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied before failure, got %d", applied)
	}
}

func TestManagerStatusValidatesSequence(t *testing.T) {
	t.Run("gap", func(t *testing.T) {
		manager := NewManager(stubScanner{migrations: migrations("001", "003")}, &recordingExecutor{}, nil)
		if _, err := manager.Status(context.Background()); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("applied version without script", func(t *testing.T) {
		executor := &recordingExecutor{applied: []AppliedMigration{{Version: "002"}}}
		manager := NewManager(stubScanner{migrations: migrations("001")}, executor, nil)
		if _, err := manager.Status(context.Background()); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("edited script", func(t *testing.T) {
		executor := &recordingExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "old"}}}
		manager := NewManager(stubScanner{migrations: migrations("001")}, executor, nil)
		if _, err := manager.Status(context.Background()); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}

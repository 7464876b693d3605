package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestScannerOrdersByNumericVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_late.sql":    {Data: []byte("CREATE TABLE late (id INTEGER);")},
		"migrations/002_second.sql":  {Data: []byte("-- Description: Second step\nCREATE TABLE b (id INTEGER);")},
		"migrations/001_initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"migrations/README.md":       {Data: []byte("ignored")},
	}

	migrations, err := NewScanner(fsys, "migrations").Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001" || migrations[1].Version != "002" || migrations[2].Version != "010" {
		t.Fatalf("unexpected order: %s %s %s", migrations[0].Version, migrations[1].Version, migrations[2].Version)
	}
	if migrations[1].Description != "Second step" {
		t.Fatalf("expected description from comment, got %q", migrations[1].Description)
	}
	if migrations[0].Description != "initial" {
		t.Fatalf("expected description from filename, got %q", migrations[0].Description)
	}
	if migrations[0].Checksum == "" {
		t.Fatal("expected checksum to be populated")
	}
}

func TestScannerRejectsBadFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {"m/first.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}},
		"empty":    {"m/001_empty.sql": {Data: []byte("-- nothing here\n")}},
		"duplicate": {
			"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"m/1_b.sql":   {Data: []byte("CREATE TABLE b (id INTEGER);")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewScanner(fsys, "m").Scan()
			if err == nil {
				t.Fatal("expected error")
			}
			var mErr *MigrationError
			if !errors.As(err, &mErr) {
				t.Fatalf("expected MigrationError, got %T", err)
			}
		})
	}
}

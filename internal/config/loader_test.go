package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"BOOKING_HTTP_PORT",
	"BOOKING_STORAGE",
	"BOOKING_SQLITE_DSN",
	"BOOKING_POSTGRES_URL",
	"BOOKING_TIMEZONE",
	"BOOKING_STORE_TIMEOUT",
	"BOOKING_CATALOG_TTL",
	"BOOKING_AMQP_URL",
	"BOOKING_QUEUE",
	"BOOKING_LOG_LEVEL",
	"BOOKING_CORS_ORIGINS",
}

// clearEnv blanks every variable for the test; FromEnv treats blank as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Storage != StorageSQLite || cfg.SQLiteDSN != "booking.db" {
			t.Fatalf("unexpected default storage: %q %q", cfg.Storage, cfg.SQLiteDSN)
		}
		if cfg.Location != time.UTC {
			t.Fatalf("expected UTC, got %v", cfg.Location)
		}
		if cfg.StoreTimeout != 5*time.Second {
			t.Fatalf("expected 5s store timeout, got %s", cfg.StoreTimeout)
		}
		if cfg.Queue != "booking.commands" {
			t.Fatalf("unexpected default queue %q", cfg.Queue)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %v", cfg.LogLevel)
		}
	})

	t.Run("errors when the postgres url is missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKING_STORAGE", "postgres")

		_, err := FromEnv()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: BOOKING_POSTGRES_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_STORAGE", "Postgres")
		t.Setenv("BOOKING_POSTGRES_URL", "postgres://localhost/booking")
		t.Setenv("BOOKING_TIMEZONE", "Asia/Tokyo")
		t.Setenv("BOOKING_STORE_TIMEOUT", "250ms")
		t.Setenv("BOOKING_CATALOG_TTL", "-1s")
		t.Setenv("BOOKING_LOG_LEVEL", "debug")
		t.Setenv("BOOKING_CORS_ORIGINS", "https://a.example, ,https://b.example")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.Storage != StoragePostgres {
			t.Fatalf("expected postgres storage, got %q", cfg.Storage)
		}
		if cfg.Location.String() != "Asia/Tokyo" {
			t.Fatalf("expected Asia/Tokyo, got %v", cfg.Location)
		}
		if cfg.StoreTimeout != 250*time.Millisecond {
			t.Fatalf("expected 250ms timeout, got %s", cfg.StoreTimeout)
		}
		if cfg.CatalogTTL != -time.Second {
			t.Fatalf("expected negative catalog ttl, got %s", cfg.CatalogTTL)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %v", cfg.LogLevel)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
			t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKING_HTTP_PORT", "eighty")
		t.Setenv("BOOKING_STORAGE", "mongo")
		t.Setenv("BOOKING_STORE_TIMEOUT", "0s")

		_, err := FromEnv()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "環境変数の値が不正です: BOOKING_HTTP_PORT, BOOKING_STORAGE, BOOKING_STORE_TIMEOUT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	for _, key := range []string{"BOOKING_HTTP_PORT", "BOOKING_QUEUE"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("BOOKING_HTTP_PORT")
		_ = os.Unsetenv("BOOKING_QUEUE")
	})

	path := filepath.Join(t.TempDir(), "booking.env")
	content := "BOOKING_HTTP_PORT=7070\nBOOKING_QUEUE=desk.commands\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.HTTPPort != 7070 || cfg.Queue != "desk.commands" {
		t.Fatalf("expected values from env file, got %d %q", cfg.HTTPPort, cfg.Queue)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for a missing env file")
	}
}

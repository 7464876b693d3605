// Package migration applies versioned SQL scripts to a SQLite database.
//
// Scripts are read from an fs.FS (usually an embed.FS) and named
// {version}_{description}.sql, for example "001_reservations.sql". Each
// script runs in its own transaction together with the schema_migrations row
// that records it, so a failed script leaves no trace.
//
//	manager := migration.NewManager(migration.NewScanner(migrations, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration

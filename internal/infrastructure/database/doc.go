// Package database provides SQLite connectivity for the bridge's identity
// catalog.
//
// This package manages:
//   - Database connection with WAL mode
//   - Schema migrations embedded into the binary
//   - Connection lifecycle and health checks
//
// The catalog is small (a row per tracked device ever seen, plus the
// instance identity) but it must survive restarts: entity ids handed to
// Home Assistant are permanent, so the serial-to-slot mapping behind them
// has to be durable.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations are additive-only to support safe rollbacks:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Never DROP or RENAME columns
//   - Each migration file has both .up.sql and .down.sql
package database

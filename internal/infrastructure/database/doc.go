// Package database provides the registry's SQLite connectivity.
//
// It owns the connection lifecycle (WAL mode, busy timeout, a
// single-connection pool) and applies the embedded schema migrations.
// Migrations move forward only: one SQL file per step, named
// YYYYMMDD_HHMMSS_description.sql, applied in version order and
// recorded in schema_migrations.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Repositories take db.DB directly; this package adds nothing to the
// query path.
package database

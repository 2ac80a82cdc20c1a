// Package sqlite provides the SQLite-backed job history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, so the Windows binary cross-compiles cleanly.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each NNN_name.up.sql file records its own version
// in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at <root>/data/history.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout so concurrent invocations can share it.
package sqlite

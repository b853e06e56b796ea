// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every partsync store
// through a single database connection:
//
//   - QueueStore: the offline action queue, ordered by an autoincrement sequence
//   - CacheStore: cached collections and their fetch cursors
//   - SyncStateStore: the last sync status and connectivity
//   - ActorStore: the authenticated actor and bearer token
//   - NotificationStore: user-facing notifications
//   - HistoryStore: sync and drain run history
//
// Queries with optional clauses are built with Masterminds/squirrel.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.partsync/data/partsync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

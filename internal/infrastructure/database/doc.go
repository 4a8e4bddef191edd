// Package database is the SQLite engine adapter used by simpledb.
//
// It opens a database through either of two database/sql drivers
// (mattn/go-sqlite3 with cgo, or the pure Go modernc.org/sqlite), executes
// statements with bound parameters, reads results into memory together
// with their declared column types, and applies file-based migrations.
//
// Connection handling:
//   - The pool holds exactly one connection that is never recycled. SQLite
//     has a single writer, and an in-memory database lives on the
//     connection that created it.
//   - Path "memory" opens an in-memory database, "disk" a temporary file
//     database removed on close. Any other value is a file path whose
//     directory is created on demand (file mode 0600).
//   - File databases get busy timeout, foreign keys and optional WAL mode
//     through the driver's DSN parameters.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "data/app.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, os.DirFS("migrations")); err != nil {
//	    return err
//	}
//
//	rs, err := db.Query(ctx, "SELECT name FROM sqlite_master WHERE type = ?", "table")
//
// Migrations are pairs of files named YYYYMMDD_HHMMSS_description.up.sql
// and .down.sql. Each migration is applied in its own transaction and
// recorded in the schema_migrations table.
package database

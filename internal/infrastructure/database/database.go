package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)
	_ "modernc.org/sqlite"          // SQLite driver (pure Go)
)

// Supported database/sql driver names.
const (
	// DriverCGO is the mattn/go-sqlite3 driver. It is the default.
	DriverCGO = "sqlite3"

	// DriverPureGo is the modernc.org/sqlite driver, for builds without cgo.
	DriverPureGo = "sqlite"
)

// Special Path values.
const (
	// PathMemory opens a private in-memory database.
	PathMemory = "memory"

	// PathDisk opens a private temporary on-disk database that SQLite
	// deletes when the connection closes.
	PathDisk = "disk"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// ErrUnknownDriver is returned by Open for a driver name other than
// DriverCGO or DriverPureGo.
var ErrUnknownDriver = errors.New("database: unknown driver")

// ErrClosed is returned by every operation on a DB after Close.
var ErrClosed = errors.New("database: closed")

// DB wraps a sql.DB connection to a SQLite database.
// It is the engine behind the simpledb facades: it executes statements,
// returns typed result sets and applies migrations.
type DB struct {
	*sql.DB
	path   string
	driver string
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Driver selects the database/sql driver: "sqlite3" (cgo, default) or
	// "sqlite" (pure Go).
	Driver string

	// Path is the filesystem path to the SQLite database file. The
	// directory is created if it doesn't exist. "memory" (or ":memory:")
	// opens an in-memory database, "disk" (or "") a temporary one.
	Path string

	// WALMode enables Write-Ahead Logging for file databases.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// ephemeral reports whether the configured path names a database that
// lives only as long as its connection.
func (c Config) ephemeral() bool {
	switch c.Path {
	case "", PathMemory, PathDisk, ":memory:":
		return true
	}
	return false
}

// sqlitePath maps the special Path values to what SQLite expects.
func (c Config) sqlitePath() string {
	switch c.Path {
	case PathMemory, ":memory:":
		return ":memory:"
	case PathDisk, "":
		return ""
	}
	return c.Path
}

// driverName returns the configured driver, defaulting to DriverCGO.
func (c Config) driverName() (string, error) {
	switch c.Driver {
	case "", DriverCGO:
		return DriverCGO, nil
	case DriverPureGo:
		return DriverPureGo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
}

// dsn builds the connection string for a file database.
// Each driver spells its pragmas differently.
//
// See: https://github.com/mattn/go-sqlite3#connection-string
// and https://pkg.go.dev/modernc.org/sqlite#Driver.Open
func (c Config) dsn(driver string) string {
	busy := c.BusyTimeout * msPerSecond
	if driver == DriverPureGo {
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", c.Path, busy)
		if c.WALMode {
			dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		}
		return dsn
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", c.Path, busy)
	if c.WALMode {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return dsn
}

// Open creates a new database connection with the specified configuration.
//
// For a file database it:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database file (creates if not present)
//  3. Configures WAL mode and busy timeout
//  4. Sets file permissions (0600)
//
// In-memory and temporary databases skip the filesystem steps and have
// foreign keys enabled with a PRAGMA instead.
//
// The pool is limited to one connection that is never recycled, so an
// in-memory database keeps its contents for the lifetime of the DB.
//
// Parameters:
//   - ctx: Context for the connectivity check
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If connection or configuration fails
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver, err := cfg.driverName()
	if err != nil {
		return nil, err
	}

	var dsn string
	if cfg.ephemeral() {
		dsn = cfg.sqlitePath()
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = cfg.dsn(driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer, and an in-memory database exists
	// only on the connection that created it.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	db := &DB{
		DB:     sqlDB,
		path:   cfg.sqlitePath(),
		driver: driver,
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if cfg.ephemeral() {
		if _, err := db.DB.ExecContext(pingCtx, "PRAGMA foreign_keys = ON"); err != nil {
			sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		return db, nil
	}

	// File might not exist until the first write.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Intentional: first run creates file later

	return db, nil
}

// Close closes the database connection gracefully.
// Calling Close on an already closed or zero DB is a no-op.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	err := db.DB.Close()
	db.DB = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the SQLite path of the database: a file path, ":memory:",
// or "" for a temporary database.
func (db *DB) Path() string {
	return db.path
}

// Driver returns the database/sql driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// HealthCheck verifies the database is accessible and functioning.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.DB == nil {
		return fmt.Errorf("database health check failed: %w", ErrClosed)
	}
	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Exec executes a statement that doesn't return rows and reports how many
// rows it changed.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - query: SQL statement with ? placeholders
//   - args: Arguments for placeholders
//
// Returns:
//   - int64: Rows affected (0 for DDL)
//   - error: If execution fails
func (db *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if db.DB == nil {
		return 0, ErrClosed
	}
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("executing query: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // Drivers without a row count report zero
	}
	return n, nil
}

// Query executes a statement that returns rows and reads the whole result
// into memory.
//
// Values are left exactly as the driver produced them; Types carries the
// declared column type of each result column (empty for expressions) so
// callers can do their own read-back typing.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	if db.DB == nil {
		return nil, ErrClosed
	}
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	return scanResultSet(rows)
}

// BeginTx starts a new transaction with the given options.
//
// Example:
//
//	tx, err := db.BeginTx(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback() // No-op if committed
//
//	// ... execute queries on tx ...
//
//	return tx.Commit()
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if db.DB == nil {
		return nil, ErrClosed
	}
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}

// String describes the database for logs.
func (db *DB) String() string {
	path := db.path
	if path == "" {
		path = "(temporary)"
	}
	return strings.Join([]string{db.driver, path}, ":")
}

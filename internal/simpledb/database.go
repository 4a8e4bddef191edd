package simpledb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/simpledb/internal/convert"
	"github.com/nerrad567/simpledb/internal/infrastructure/database"
	"github.com/nerrad567/simpledb/internal/infrastructure/logging"
)

// ColumnDef is a column name paired with a logical or native type, as
// accepted by Create.
type ColumnDef = convert.ColumnSpec

// Options configures a Database.
type Options struct {
	// Registry holds the extended types for this database. Nil means none.
	Registry *convert.Registry

	// Encoder renders values for binding and for SQL text.
	Encoder convert.Encoder

	// Logger receives debug statement logs and warnings. Nil discards.
	Logger *logging.Logger

	// Observers are notified after every write operation.
	Observers []Observer

	// Path is the location reported by Describe.
	Path string
}

// Database is the entry point to a SQLite database through the typed
// facades.
//
// Thread Safety:
//   - A Database is immutable after construction apart from its closed
//     flag; concurrent use is as safe as the underlying Engine.
type Database struct {
	engine    Engine
	processor *convert.Processor
	logger    *logging.Logger
	observers []Observer
	path      string
	closed    atomic.Bool
}

// New wraps an already open engine.
func New(engine Engine, opts Options) *Database {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Database{
		engine:    engine,
		processor: convert.NewProcessor(opts.Registry, opts.Encoder),
		logger:    logger,
		observers: slices.Clone(opts.Observers),
		path:      opts.Path,
	}
}

// Open opens SQLite with cfg and wraps it. When opts.Path is empty the
// configured path is used for Describe.
func Open(ctx context.Context, cfg database.Config, opts Options) (*Database, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if opts.Path == "" {
		opts.Path = cfg.Path
		if opts.Path == "" {
			opts.Path = database.PathDisk
		}
	}
	return New(db, opts), nil
}

// Processor returns the entry processor shared by every facade of this
// database.
func (d *Database) Processor() *convert.Processor {
	return d.processor
}

// Path returns the location reported by Describe.
func (d *Database) Path() string {
	return d.path
}

// Exec runs a statement on the engine and returns the rows it changed.
func (d *Database) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	d.logger.Debug("exec", "sql", query, "args", len(args))
	return d.engine.Exec(ctx, query, args...)
}

// Query runs a statement on the engine and returns its rows unconverted.
func (d *Database) Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	d.logger.Debug("query", "sql", query, "args", len(args))
	return d.engine.Query(ctx, query, args...)
}

// HealthCheck verifies the engine answers.
func (d *Database) HealthCheck(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if hc, ok := d.engine.(healthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	_, err := d.engine.Query(ctx, "SELECT 1")
	return err
}

// Has reports whether a table exists. Table names compare without regard
// to case, as SQLite resolves them.
func (d *Database) Has(ctx context.Context, table string) (bool, error) {
	rs, err := d.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", table)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return rs.Len() > 0, nil
}

// Table returns the facade for a table. It does no I/O; the table need not
// exist yet.
func (d *Database) Table(name string) *Table {
	return &Table{db: d, name: name}
}

// Tables lists the tables whose name passes filter, sorted by name. A nil
// filter selects every table. SQLite's internal tables are never listed.
func (d *Database) Tables(ctx context.Context, filter func(name string) bool) ([]*Table, error) {
	rs, err := d.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\\_%' ESCAPE '\\' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	tables := make([]*Table, 0, rs.Len())
	for _, row := range rs.Rows {
		name := textValue(row[0])
		if filter != nil && !filter(name) {
			continue
		}
		tables = append(tables, d.Table(name))
	}
	return tables, nil
}

// Create creates a table. Column types are logical type names or native
// type text. The primary key must name one of the columns.
func (d *Database) Create(ctx context.Context, name string, columns []ColumnDef, primaryKey string) (*Table, error) {
	ev := Event{Table: name, Operation: OpCreate, Started: time.Now()}
	table, err := d.create(ctx, name, columns, primaryKey)
	ev.Err = err
	d.notify(ctx, ev)
	return table, err
}

func (d *Database) create(ctx context.Context, name string, columns []ColumnDef, primaryKey string) (*Table, error) {
	exists, err := d.Has(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	if !slices.ContainsFunc(columns, func(c ColumnDef) bool { return c.Name == primaryKey }) {
		return nil, fmt.Errorf("%w: %q in table %s", ErrInvalidPrimaryKey, primaryKey, name)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		def := quoteIdent(c.Name) + " " + string(convert.NativeTypeOf(c.Type))
		if c.Name == primaryKey {
			def += " PRIMARY KEY"
		}
		defs[i] = def
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := d.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", name, err)
	}
	d.logger.Info("table created", "table", name, "columns", len(columns))
	return d.Table(name), nil
}

// Drop removes a table.
func (d *Database) Drop(ctx context.Context, name string) error {
	ev := Event{Table: name, Operation: OpDrop, Started: time.Now()}
	ev.Err = d.drop(ctx, name)
	d.notify(ctx, ev)
	return ev.Err
}

func (d *Database) drop(ctx context.Context, name string) error {
	exists, err := d.Has(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if _, err := d.Exec(ctx, "DROP TABLE "+quoteIdent(name)); err != nil {
		return fmt.Errorf("dropping table %s: %w", name, err)
	}
	d.logger.Info("table dropped", "table", name)
	return nil
}

// Close closes the engine. A close failure is logged and returned. After
// Close every other operation reports ErrClosed; closing again is a no-op.
func (d *Database) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	if err := d.engine.Close(); err != nil {
		d.logger.Warn("closing database", "path", d.path, "error", err)
		return err
	}
	return nil
}

// Describe renders the database and its table names.
func (d *Database) Describe(ctx context.Context) (string, error) {
	tables, err := d.Tables(ctx, nil)
	if err != nil {
		return "", err
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	return fmt.Sprintf("Database{path=%s,tables=[%s]}", d.path, strings.Join(names, ",")), nil
}

// debugEnabled reports whether statement previews are worth rendering.
func (d *Database) debugEnabled(ctx context.Context) bool {
	return d.logger.Enabled(ctx, slog.LevelDebug)
}

package simpledb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/simpledb/internal/convert"
)

// ColumnInfo is a column's name and declared type as SQLite reports them.
type ColumnInfo struct {
	Name       string
	Type       convert.NativeType
	PrimaryKey bool
	NotNull    bool
}

// Table is the facade for one table. It holds no state beyond its name, so
// it stays valid across schema changes.
type Table struct {
	db   *Database
	name string
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Database returns the database the table belongs to.
func (t *Table) Database() *Database {
	return t.db
}

// Exists reports whether the table exists.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	return t.db.Has(ctx, t.name)
}

// Column returns the facade for a column. It does no I/O.
func (t *Table) Column(name string) *Column {
	return &Column{table: t, name: name}
}

// ColumnInfo returns every column in declaration order.
func (t *Table) ColumnInfo(ctx context.Context) ([]ColumnInfo, error) {
	rs, err := t.db.Query(ctx,
		`SELECT name, type, pk, "notnull" FROM pragma_table_info(?) ORDER BY cid`, t.name)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", t.name, err)
	}
	infos := make([]ColumnInfo, 0, rs.Len())
	for _, row := range rs.Rows {
		infos = append(infos, ColumnInfo{
			Name:       textValue(row[0]),
			Type:       convert.NativeType(textValue(row[1])),
			PrimaryKey: isNonZero(row[2]),
			NotNull:    isNonZero(row[3]),
		})
	}
	return infos, nil
}

// Columns returns a facade for every column in declaration order.
func (t *Table) Columns(ctx context.Context) ([]*Column, error) {
	infos, err := t.ColumnInfo(ctx)
	if err != nil {
		return nil, err
	}
	cols := make([]*Column, len(infos))
	for i, info := range infos {
		cols[i] = t.Column(info.Name)
	}
	return cols, nil
}

// hasColumn reports whether the table has a column called name.
func (t *Table) hasColumn(ctx context.Context, name string) (bool, error) {
	rs, err := t.db.Query(ctx, "SELECT 1 FROM pragma_table_info(?) WHERE name = ? COLLATE NOCASE", t.name, name)
	if err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", t.name, name, err)
	}
	return rs.Len() > 0, nil
}

// requireTable returns ErrTableNotFound when the table is missing.
func (t *Table) requireTable(ctx context.Context) error {
	exists, err := t.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, t.name)
	}
	return nil
}

// AddColumn adds a column of a logical or native type.
func (t *Table) AddColumn(ctx context.Context, name, typ string) (*Column, error) {
	ev := Event{Table: t.name, Operation: OpAddColumn, Column: name, Started: time.Now()}
	ev.Err = t.addColumn(ctx, name, typ)
	t.db.notify(ctx, ev)
	if ev.Err != nil {
		return nil, ev.Err
	}
	return t.Column(name), nil
}

func (t *Table) addColumn(ctx context.Context, name, typ string) error {
	if err := t.requireTable(ctx); err != nil {
		return err
	}
	exists, err := t.hasColumn(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s.%s", ErrColumnExists, t.name, name)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(t.name), quoteIdent(name), convert.NativeTypeOf(typ))
	if _, err := t.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", t.name, name, err)
	}
	return nil
}

// DropColumn removes a column.
func (t *Table) DropColumn(ctx context.Context, name string) error {
	ev := Event{Table: t.name, Operation: OpDropColumn, Column: name, Started: time.Now()}
	ev.Err = t.dropColumn(ctx, name)
	t.db.notify(ctx, ev)
	return ev.Err
}

func (t *Table) dropColumn(ctx context.Context, name string) error {
	if err := t.requireTable(ctx); err != nil {
		return err
	}
	exists, err := t.hasColumn(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, t.name, name)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(t.name), quoteIdent(name))
	if _, err := t.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("dropping column %s.%s: %w", t.name, name, err)
	}
	return nil
}

// selectFrom builds a SELECT of the given columns, or every column.
func (t *Table) selectFrom(columns []string) string {
	list := "*"
	if len(columns) > 0 {
		list = quoteIdents(columns)
	}
	return fmt.Sprintf("SELECT %s FROM %s", list, quoteIdent(t.name))
}

// All returns every row, restricted to columns when any are named. Values
// are typed from the declared column types and extended types are
// restored.
func (t *Table) All(ctx context.Context, columns ...string) ([]*convert.Entry, error) {
	rs, err := t.db.Query(ctx, t.selectFrom(columns))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.name, err)
	}
	return decodeEntries(t.db.processor, rs), nil
}

// Get returns the rows of All that pass filter. A nil filter keeps every
// row.
func (t *Table) Get(ctx context.Context, columns []string, filter func(*convert.Entry) bool) ([]*convert.Entry, error) {
	rows, err := t.All(ctx, columns...)
	if err != nil || filter == nil {
		return rows, err
	}
	kept := rows[:0]
	for _, row := range rows {
		if filter(row) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// Where returns the rows whose column equals value.
func (t *Table) Where(ctx context.Context, column string, value any) ([]*convert.Entry, error) {
	stmt := t.selectFrom(nil) + " WHERE " + quoteIdent(column) + " = ?"
	rs, err := t.db.Query(ctx, stmt, t.db.processor.Encoder().Bind(value))
	if err != nil {
		return nil, fmt.Errorf("reading %s where %s: %w", t.name, column, err)
	}
	return decodeEntries(t.db.processor, rs), nil
}

// Add inserts an entry and returns it as stored: producers resolved and
// extended type columns generated.
func (t *Table) Add(ctx context.Context, entry *convert.Entry) (*convert.Entry, error) {
	ev := Event{Table: t.name, Operation: OpInsert, Started: time.Now()}
	processed := t.db.processor.ProcessForWrite(entry)
	ev.Entry = processed
	ev.Rows, ev.Err = t.insert(ctx, processed)
	t.db.notify(ctx, ev)
	if ev.Err != nil {
		return nil, ev.Err
	}
	return processed, nil
}

func (t *Table) insert(ctx context.Context, processed *convert.Entry) (int64, error) {
	if t.db.debugEnabled(ctx) {
		t.db.logger.Debug("insert preview", "sql", t.statementFor(processed))
	}
	columns, args := t.db.processor.Bind(processed)
	var stmt string
	if len(columns) == 0 {
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteIdent(t.name))
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(t.name), quoteIdents(columns), placeholders(len(columns)))
	}
	n, err := t.db.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", t.name, err)
	}
	return n, nil
}

// Update sets the entry's columns on every row whose column equals value.
// It returns the rows matching afterwards: when the entry itself sets the
// match column, rows are matched on the new value.
func (t *Table) Update(ctx context.Context, column string, value any, entry *convert.Entry) ([]*convert.Entry, error) {
	ev := Event{Table: t.name, Operation: OpUpdate, Column: column, Started: time.Now()}
	value = convert.Resolve(value)
	processed := t.db.processor.ProcessForWrite(entry)
	ev.Entry = processed
	ev.Rows, ev.Err = t.update(ctx, column, value, processed)
	t.db.notify(ctx, ev)
	if ev.Err != nil {
		return nil, ev.Err
	}
	if v, ok := processed.Lookup(column); ok {
		value = v
	}
	return t.Where(ctx, column, value)
}

func (t *Table) update(ctx context.Context, column string, value any, processed *convert.Entry) (int64, error) {
	columns, args := t.db.processor.Bind(processed)
	if len(columns) == 0 {
		return 0, fmt.Errorf("updating %s: %w", t.name, ErrEmptyEntry)
	}
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = quoteIdent(c) + " = ?"
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(t.name), strings.Join(sets, ", "), quoteIdent(column))
	args = append(args, t.db.processor.Encoder().Bind(value))
	n, err := t.db.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("updating %s: %w", t.name, err)
	}
	return n, nil
}

// Delete removes every row whose column equals value and returns how many
// went.
func (t *Table) Delete(ctx context.Context, column string, value any) (int64, error) {
	ev := Event{Table: t.name, Operation: OpDelete, Column: column, Started: time.Now()}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(t.name), quoteIdent(column))
	n, err := t.db.Exec(ctx, stmt, t.db.processor.Encoder().Bind(value))
	if err != nil {
		err = fmt.Errorf("deleting from %s: %w", t.name, err)
	}
	ev.Rows, ev.Err = n, err
	t.db.notify(ctx, ev)
	return n, err
}

// InsertStatement renders the INSERT that Add would run for entry as SQL
// text with literal values. Producers and extended types run, so the
// statement shows freshly generated values.
func (t *Table) InsertStatement(entry *convert.Entry) string {
	return t.statementFor(t.db.processor.ProcessForWrite(entry))
}

// statementFor renders an already processed entry as an INSERT statement.
func (t *Table) statementFor(processed *convert.Entry) string {
	encoded := t.db.processor.Encode(processed)
	if len(encoded) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES;", quoteIdent(t.name))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		quoteIdent(t.name), quoteIdents(encoded.Columns()), strings.Join(encoded.Literals(), ", "))
}

// Dump renders every stored row as an INSERT statement. Values are the
// stored ones, so replaying the statements reproduces the table exactly.
func (t *Table) Dump(ctx context.Context) ([]string, error) {
	rs, err := t.db.Query(ctx, t.selectFrom(nil))
	if err != nil {
		return nil, fmt.Errorf("dumping %s: %w", t.name, err)
	}
	types := resultTypes(rs)
	stmts := make([]string, 0, rs.Len())
	for _, row := range rawEntries(rs) {
		stored := convert.NewEntry()
		for _, f := range row.Fields() {
			v := f.Value
			if b, ok := v.([]byte); ok && types[f.Column].IsText() {
				v = string(b)
			}
			stored.Set(f.Column, v)
		}
		stmts = append(stmts, t.statementFor(stored))
	}
	return stmts, nil
}

// Describe renders the table and its column names.
func (t *Table) Describe(ctx context.Context) (string, error) {
	infos, err := t.ColumnInfo(ctx)
	if err != nil {
		return "", err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return fmt.Sprintf("Table{name=%s,columns=[%s]}", t.name, strings.Join(names, ",")), nil
}

// isNonZero reads a pragma flag column.
func isNonZero(v any) bool {
	switch n := v.(type) {
	case int64:
		return n != 0
	case int:
		return n != 0
	case bool:
		return n
	}
	return false
}

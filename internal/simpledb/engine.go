package simpledb

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/simpledb/internal/convert"
	"github.com/nerrad567/simpledb/internal/infrastructure/database"
)

// Engine is the embedded SQL engine the facades delegate to.
// *database.DB implements it.
type Engine interface {
	// Exec runs a statement and reports the number of rows it changed.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Query runs a statement and returns every row it produced.
	Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error)

	// Close releases the engine.
	Close() error
}

// healthChecker is implemented by engines that can verify their connection.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// quoteIdent quotes a table or column name for use in SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteIdents quotes and comma-joins a list of names.
func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// placeholders returns n comma-separated bind markers.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// resultTypes maps result columns to their declared native types.
func resultTypes(rs *database.ResultSet) convert.ColumnTypes {
	types := make(convert.ColumnTypes, len(rs.Columns))
	for i, c := range rs.Columns {
		if i < len(rs.Types) {
			types[c] = convert.NativeType(rs.Types[i])
		}
	}
	return types
}

// rawEntries turns result rows into entries without any conversion.
func rawEntries(rs *database.ResultSet) []*convert.Entry {
	out := make([]*convert.Entry, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		e := convert.NewEntry()
		for i, c := range rs.Columns {
			e.Set(c, row[i])
		}
		out = append(out, e)
	}
	return out
}

// decodeEntries turns result rows into caller-facing entries: read-back
// typing from the declared types, then extended type restoration.
func decodeEntries(p *convert.Processor, rs *database.ResultSet) []*convert.Entry {
	types := resultTypes(rs)
	raw := rawEntries(rs)
	out := make([]*convert.Entry, len(raw))
	for i, e := range raw {
		out[i] = p.Decode(e, types)
	}
	return out
}

// textValue renders a catalogue value (table or column name) as a string.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

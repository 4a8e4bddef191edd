package database

import (
	"database/sql"
	"fmt"
)

// ResultSet is a fully read query result.
type ResultSet struct {
	// Columns holds the result column names in select order.
	Columns []string

	// Types holds the declared type of each column, upper-cased by the
	// driver (e.g. "INTEGER", "CHAR(1)"). Empty for computed columns.
	Types []string

	// Rows holds one value slice per row, aligned with Columns.
	Rows [][]any
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Column returns the values of the named column across all rows.
func (rs *ResultSet) Column(name string) ([]any, bool) {
	idx := -1
	for i, c := range rs.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// scanResultSet drains rows into a ResultSet.
func scanResultSet(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}

	rs := &ResultSet{
		Columns: cols,
		Types:   make([]string, len(colTypes)),
		Rows:    [][]any{},
	}
	for i, ct := range colTypes {
		rs.Types[i] = ct.DatabaseTypeName()
	}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return rs, nil
}

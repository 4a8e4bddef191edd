package simpledb

import (
	"context"
	"fmt"
	"strings"
)

// Column is the facade for one column of a table.
type Column struct {
	table *Table
	name  string
}

// Name returns the column name.
func (c *Column) Name() string {
	return c.name
}

// Table returns the table the column belongs to.
func (c *Column) Table() *Table {
	return c.table
}

// Exists reports whether the column exists.
func (c *Column) Exists(ctx context.Context) (bool, error) {
	return c.table.hasColumn(ctx, c.name)
}

// Has reports whether any row stores value in this column. The value is
// encoded the way writes are, so Has(ctx, true) matches 'T'.
func (c *Column) Has(ctx context.Context, value any) (bool, error) {
	db := c.table.db
	stmt := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", quoteIdent(c.table.name), quoteIdent(c.name))
	rs, err := db.Query(ctx, stmt, db.processor.Encoder().Bind(value))
	if err != nil {
		return false, fmt.Errorf("checking %s.%s: %w", c.table.name, c.name, err)
	}
	return rs.Len() > 0, nil
}

// All returns the column's value in every row, typed and restored like
// Table.All.
func (c *Column) All(ctx context.Context) ([]any, error) {
	rows, err := c.table.All(ctx, c.name)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row.Get(c.name)
	}
	return values, nil
}

// Get returns the values of All that pass filter. A nil filter keeps every
// value.
func (c *Column) Get(ctx context.Context, filter func(any) bool) ([]any, error) {
	values, err := c.All(ctx)
	if err != nil || filter == nil {
		return values, err
	}
	kept := values[:0]
	for _, v := range values {
		if filter(v) {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

// Describe renders the column and its values.
func (c *Column) Describe(ctx context.Context) (string, error) {
	values, err := c.All(ctx)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("Column{name=%s,entries=[%s]}", c.name, strings.Join(parts, ",")), nil
}

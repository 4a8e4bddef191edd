package simpledb

import "errors"

// Sentinel errors returned by the facades. Engine failures are wrapped and
// passed through unchanged, so errors.Is and errors.As see the driver's
// own error values as well.
var (
	// ErrTableExists is returned by Create when the table already exists.
	ErrTableExists = errors.New("simpledb: table already exists")

	// ErrTableNotFound is returned when an operation needs a table that does not exist.
	ErrTableNotFound = errors.New("simpledb: table does not exist")

	// ErrInvalidPrimaryKey is returned by Create when the primary key is not one of the columns.
	ErrInvalidPrimaryKey = errors.New("simpledb: primary key is not a defined column")

	// ErrColumnExists is returned by AddColumn when the column already exists.
	ErrColumnExists = errors.New("simpledb: column already exists")

	// ErrColumnNotFound is returned by DropColumn when the column does not exist.
	ErrColumnNotFound = errors.New("simpledb: column does not exist")

	// ErrEmptyEntry is returned by Update when there is nothing to set.
	ErrEmptyEntry = errors.New("simpledb: entry has no columns")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("simpledb: database closed")
)

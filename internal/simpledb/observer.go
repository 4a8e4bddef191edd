package simpledb

import (
	"context"
	"time"

	"github.com/nerrad567/simpledb/internal/convert"
)

// Operation names a write operation reported to observers.
type Operation string

// Write operations.
const (
	OpCreate     Operation = "create"
	OpDrop       Operation = "drop"
	OpAddColumn  Operation = "add_column"
	OpDropColumn Operation = "drop_column"
	OpInsert     Operation = "insert"
	OpUpdate     Operation = "update"
	OpDelete     Operation = "delete"
)

// Event describes one completed write operation, successful or not.
type Event struct {
	Table     string
	Operation Operation

	// Column is the column added or dropped, or the match column of an
	// update or delete.
	Column string

	// Entry is the processed entry for inserts and updates: the values as
	// stored, after producers and extended types ran.
	Entry *convert.Entry

	Rows     int64
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Observer receives an Event after every write operation. Observers run
// synchronously on the calling goroutine; an error they return is logged
// and never fails the operation.
type Observer interface {
	Observe(ctx context.Context, ev Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event) error

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// notify completes ev's timing and hands it to every observer.
func (d *Database) notify(ctx context.Context, ev Event) {
	ev.Duration = time.Since(ev.Started)
	for _, o := range d.observers {
		if err := o.Observe(ctx, ev); err != nil {
			d.logger.Warn("observer failed",
				"table", ev.Table,
				"operation", string(ev.Operation),
				"error", err,
			)
		}
	}
}

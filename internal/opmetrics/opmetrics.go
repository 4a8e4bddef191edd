// Package opmetrics records simpledb write operations as time-series points
// and keeps in-process counters for the HTTP metrics endpoint.
//
// Every write becomes one point in the simpledb_operations measurement,
// tagged by table, operation and status, with the rows affected and the
// duration as fields. Writes are non-blocking: the InfluxDB client batches
// points and flushes them in the background.
package opmetrics

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/nerrad567/simpledb/internal/simpledb"
)

// Measurement is the InfluxDB measurement operation points are written to.
const Measurement = "simpledb_operations"

// Status tag values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PointWriter queues one point. *influxdb.Client implements it.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time)
}

// Counts is the running total for one operation.
type Counts struct {
	Total  int64 `json:"total"`
	Errors int64 `json:"errors"`
	Rows   int64 `json:"rows"`
}

// Recorder is a simpledb.Observer that records operation metrics.
//
// Thread Safety:
//   - Observe and Snapshot are safe for concurrent use.
type Recorder struct {
	writer PointWriter

	mu     sync.Mutex
	counts map[string]Counts
}

// New creates a Recorder. A nil writer keeps only the in-process counters.
func New(writer PointWriter) *Recorder {
	return &Recorder{
		writer: writer,
		counts: make(map[string]Counts),
	}
}

// Observe records ev. It never fails.
func (r *Recorder) Observe(_ context.Context, ev simpledb.Event) error {
	status := StatusOK
	if ev.Err != nil {
		status = StatusError
	}

	r.mu.Lock()
	c := r.counts[string(ev.Operation)]
	c.Total++
	c.Rows += ev.Rows
	if ev.Err != nil {
		c.Errors++
	}
	r.counts[string(ev.Operation)] = c
	r.mu.Unlock()

	if r.writer == nil {
		return nil
	}
	r.writer.WritePoint(Measurement,
		map[string]string{
			"table":     ev.Table,
			"operation": string(ev.Operation),
			"status":    status,
		},
		map[string]any{
			"rows":        ev.Rows,
			"duration_ms": float64(ev.Duration.Microseconds()) / 1000,
		},
		ev.Started,
	)
	return nil
}

// Snapshot returns a copy of the counters keyed by operation.
func (r *Recorder) Snapshot() map[string]Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.counts)
}

package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/simpledb/internal/opmetrics"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string                      `json:"timestamp"`
	Version       string                      `json:"version"`
	UptimeSeconds int64                       `json:"uptime_seconds"`
	Runtime       RuntimeMetrics              `json:"runtime"`
	Database      DatabaseMetrics             `json:"database"`
	Operations    map[string]opmetrics.Counts `json:"operations,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// DatabaseMetrics describes the open database.
type DatabaseMetrics struct {
	Path   string `json:"path"`
	Tables int    `json:"tables"`
}

// handleMetrics returns runtime, database and operation metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Database: DatabaseMetrics{Path: s.db.Path()},
	}

	if tables, err := s.db.Tables(r.Context(), nil); err == nil {
		metrics.Database.Tables = len(tables)
	} else {
		s.logger.Warn("metrics: listing tables failed", "error", err)
	}
	if s.metrics != nil {
		metrics.Operations = s.metrics.Snapshot()
	}

	writeJSON(w, http.StatusOK, metrics)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.withRequestID)
	r.Use(s.accessLog)
	r.Use(s.recoverPanics)
	r.Use(s.limitBody)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", s.handleListTables)
			r.Post("/", s.handleCreateTable)

			r.Route("/{table}", func(r chi.Router) {
				r.Get("/", s.handleGetTable)
				r.Delete("/", s.handleDropTable)
				r.Get("/dump", s.handleDumpTable)

				r.Route("/columns", func(r chi.Router) {
					r.Post("/", s.handleAddColumn)
					r.Get("/{column}", s.handleGetColumn)
					r.Delete("/{column}", s.handleDropColumn)
				})

				r.Route("/rows", func(r chi.Router) {
					r.Get("/", s.handleListRows)
					r.Post("/", s.handleInsertRow)
					r.Patch("/", s.handleUpdateRows)
					r.Delete("/", s.handleDeleteRows)
				})
			})
		})
	})

	return r
}

// handleHealth reports the server, database and optional backend status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"database": "ok",
	}
	if err := s.db.HealthCheck(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = err.Error()
	}
	if s.mqtt != nil {
		body["mqtt"] = connectionText(s.mqtt)
	}
	if s.influx != nil {
		body["influxdb"] = connectionText(s.influx)
	}
	writeJSON(w, status, body)
}

func connectionText(c ConnectionStatus) string {
	if c.IsConnected() {
		return "connected"
	}
	return "disconnected"
}

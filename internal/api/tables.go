package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simpledb/internal/simpledb"
)

// columnRequest is one column in a create-table or add-column body.
type columnRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// createTableRequest is the body of POST /tables.
type createTableRequest struct {
	Name       string          `json:"name"`
	Columns    []columnRequest `json:"columns"`
	PrimaryKey string          `json:"primary_key"`
}

// columnResponse describes one column of a table.
type columnResponse struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	NotNull    bool   `json:"not_null,omitempty"`
}

// tableResponse describes a table and its columns.
type tableResponse struct {
	Name    string           `json:"name"`
	Columns []columnResponse `json:"columns"`
}

// handleListTables returns every table name.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.db.Tables(r.Context(), nil)
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": names,
		"count":  len(names),
	})
}

// handleCreateTable creates a table from a JSON description.
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if len(req.Columns) == 0 {
		writeBadRequest(w, "at least one column is required")
		return
	}

	defs := make([]simpledb.ColumnDef, len(req.Columns))
	for i, c := range req.Columns {
		if c.Name == "" {
			writeBadRequest(w, fmt.Sprintf("column %d has no name", i))
			return
		}
		defs[i] = simpledb.ColumnDef{Name: c.Name, Type: c.Type}
	}

	table, err := s.db.Create(r.Context(), req.Name, defs, req.PrimaryKey)
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	s.writeTable(w, r, table, http.StatusCreated)
}

// handleGetTable describes one table.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	s.writeTable(w, r, table, http.StatusOK)
}

// handleDropTable drops one table.
func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Drop(r.Context(), chi.URLParam(r, "table")); err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDumpTable returns the table's rows as INSERT statements.
func (s *Server) handleDumpTable(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	stmts, err := table.Dump(r.Context())
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statements": stmts})
}

// handleAddColumn adds a column to a table.
func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.Type == "" {
		req.Type = "string"
	}

	table := s.db.Table(chi.URLParam(r, "table"))
	if _, err := table.AddColumn(r.Context(), req.Name, req.Type); err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	s.writeTable(w, r, table, http.StatusCreated)
}

// handleGetColumn returns every value of one column.
func (s *Server) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	column := table.Column(chi.URLParam(r, "column"))
	exists, err := column.Exists(r.Context())
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	if !exists {
		writeNotFound(w, "column not found")
		return
	}
	values, err := column.All(r.Context())
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   column.Name(),
		"values": values,
	})
}

// handleDropColumn removes a column from a table.
func (s *Server) handleDropColumn(w http.ResponseWriter, r *http.Request) {
	table := s.db.Table(chi.URLParam(r, "table"))
	if err := table.DropColumn(r.Context(), chi.URLParam(r, "column")); err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// existingTable resolves the {table} parameter, writing a 404 when the
// table does not exist.
func (s *Server) existingTable(w http.ResponseWriter, r *http.Request) (*simpledb.Table, bool) {
	table := s.db.Table(chi.URLParam(r, "table"))
	exists, err := table.Exists(r.Context())
	if err != nil {
		s.writeFacadeError(w, r, err)
		return nil, false
	}
	if !exists {
		writeNotFound(w, "table not found")
		return nil, false
	}
	return table, true
}

// writeTable writes a table description.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, table *simpledb.Table, status int) {
	infos, err := table.ColumnInfo(r.Context())
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	resp := tableResponse{Name: table.Name(), Columns: make([]columnResponse, len(infos))}
	for i, info := range infos {
		resp.Columns[i] = columnResponse{
			Name:       info.Name,
			Type:       string(info.Type),
			PrimaryKey: info.PrimaryKey,
			NotNull:    info.NotNull,
		}
	}
	writeJSON(w, status, resp)
}

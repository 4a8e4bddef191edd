package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/nerrad567/simpledb/internal/convert"
)

// rowFilter extracts the ?where=column&value=v query parameters. The
// value keeps its JSON type when it has one, so value=true matches a
// boolean column.
func rowFilter(r *http.Request) (column string, value any, ok bool) {
	q := r.URL.Query()
	column = q.Get("where")
	if column == "" {
		return "", nil, false
	}
	return column, convert.ParseValue(q.Get("value")), true
}

// decodeEntry reads a JSON object body into an entry, keeping key order.
func decodeEntry(r *http.Request) (*convert.Entry, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		return nil, err
	}
	entry := convert.NewEntry()
	if err := entry.UnmarshalJSON(buf.Bytes()); err != nil {
		return nil, err
	}
	return entry, nil
}

// handleListRows returns rows, optionally restricted to ?columns=a,b and
// filtered with ?where=column&value=v.
func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}

	var columns []string
	if c := r.URL.Query().Get("columns"); c != "" {
		columns = strings.Split(c, ",")
	}

	var (
		rows []*convert.Entry
		err  error
	)
	if column, value, filtered := rowFilter(r); filtered {
		rows, err = table.Where(r.Context(), column, value)
		if err == nil && len(columns) > 0 {
			rows = project(rows, columns)
		}
	} else {
		rows, err = table.All(r.Context(), columns...)
	}
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// project keeps only the named columns of each row.
func project(rows []*convert.Entry, columns []string) []*convert.Entry {
	out := make([]*convert.Entry, len(rows))
	for i, row := range rows {
		e := convert.NewEntry()
		for _, c := range columns {
			if v, ok := row.Lookup(c); ok {
				e.Set(c, v)
			}
		}
		out[i] = e
	}
	return out
}

// handleInsertRow inserts the JSON object body as one row and returns it as
// stored.
func (s *Server) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	entry, err := decodeEntry(r)
	if err != nil {
		writeBadRequest(w, "body must be a JSON object")
		return
	}
	stored, err := table.Add(r.Context(), entry)
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": stored})
}

// handleUpdateRows applies the JSON object body to the rows selected by
// ?where=column&value=v and returns them.
func (s *Server) handleUpdateRows(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	column, value, filtered := rowFilter(r)
	if !filtered {
		writeBadRequest(w, "where query parameter is required")
		return
	}
	entry, err := decodeEntry(r)
	if err != nil {
		writeBadRequest(w, "body must be a JSON object")
		return
	}
	rows, err := table.Update(r.Context(), column, value, entry)
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// handleDeleteRows deletes the rows selected by ?where=column&value=v.
func (s *Server) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	table, ok := s.existingTable(w, r)
	if !ok {
		return
	}
	column, value, filtered := rowFilter(r)
	if !filtered {
		writeBadRequest(w, "where query parameter is required")
		return
	}
	n, err := table.Delete(r.Context(), column, value)
	if err != nil {
		s.writeFacadeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

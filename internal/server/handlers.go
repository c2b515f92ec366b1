package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/mdbread/internal/dump"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/logger"
	"github.com/koustreak/mdbread/internal/mdb"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.src.Tables(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tables == nil {
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	drop, err := boolParam(r, "drop")
	if err != nil {
		writeError(w, r, err)
		return
	}

	schema, err := s.src.ExportSchema(r.Context(), chi.URLParam(r, "table"), mdb.SchemaOptions{
		DropTable: drop,
		Dialect:   mdb.Dialect(r.URL.Query().Get("dialect")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, schema)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.src.ExportDataRows(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := [][]string{}
	for row := range rows {
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInserts(w http.ResponseWriter, r *http.Request) {
	dialect := mdb.Dialect(r.URL.Query().Get("dialect"))
	if dialect == "" {
		dialect = mdb.DefaultDialect
	}

	stmts, err := s.src.ExportInserts(r.Context(), chi.URLParam(r, "table"), dialect)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for stmt := range stmts {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			_, _ = io.WriteString(w, stmt+"\n")
		}
	}
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	format, err := dump.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	drop, err := boolParam(r, "drop")
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Buffer so that a failed export can still become an error status.
	var buf strings.Builder
	if _, err := dump.Write(r.Context(), &buf, s.src, table, dump.Options{
		Format:    format,
		Dialect:   mdb.Dialect(r.URL.Query().Get("dialect")),
		DropTable: drop,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+"."+format.Ext()))
	_, _ = io.WriteString(w, buf.String())
}

// --- helpers ---

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Newf(errs.ErrKindInvalidInput, "query parameter %s=%q is not a boolean", name, v)
	}
	return b, nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindConfiguration, errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindMissingDependency:
		return http.StatusServiceUnavailable
	case errs.ErrKindExecution:
		return http.StatusBadGateway
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{
			"path":   r.URL.Path,
			"status": status,
		})
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

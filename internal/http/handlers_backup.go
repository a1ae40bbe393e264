package http

import (
	"io"
	"net/http"
)

// Imports larger than this are rejected outright.
const maxImportBytes = 10 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="billtrack-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "cannot read request body"})
		return
	}
	if len(raw) > maxImportBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "import payload too large"})
		return
	}

	stats, err := s.svc.Import(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

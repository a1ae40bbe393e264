package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"billtrack/internal/backup"
	"billtrack/internal/core"
	"billtrack/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: unknown ids to 404,
// validation failures to 422, storage failures to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr     *backup.ValidationError
		storageErr *service.StorageError
	)
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &valErr),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidMethod):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.As(err, &storageErr):
		slog.ErrorContext(r.Context(), "Storage write failed", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "storage failure"})
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

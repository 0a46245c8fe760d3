package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/juventudesmira/intake/internal/tablestore"
)

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitRequest is a flat record keyed by output column. Values may be
// strings, numbers, booleans, arrays or objects; they are stored as cells.
type SubmitRequest map[string]any

func handleSubmit(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, SubmitResponse{Message: "invalid JSON body"})
			return
		}

		err := store.Upsert(r.Context(), req)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, SubmitResponse{Success: true, Message: "Registro exitoso"})
		case errors.Is(err, tablestore.ErrMissingKey):
			writeJSON(w, http.StatusBadRequest, SubmitResponse{Message: err.Error()})
		default:
			logger.Error("submit failed", "error", err, "request_id", requestID(r))
			writeJSON(w, http.StatusInternalServerError, SubmitResponse{Message: err.Error()})
		}
	}
}

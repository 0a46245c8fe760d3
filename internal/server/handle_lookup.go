package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

type LookupResponse struct {
	Data map[string]string `json:"data"`
}

type NotFoundResponse struct {
	Message string `json:"message"`
}

func handleLookup(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(chi.URLParam(r, "key"))
		if !survey.ValidDocumentNumber(key) {
			writeError(w, http.StatusBadRequest, "document number must be 7 to 12 digits")
			return
		}

		record, err := store.Lookup(r.Context(), key)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, LookupResponse{Data: record})
		case errors.Is(err, tablestore.ErrKeyNotFound):
			writeJSON(w, http.StatusNotFound, NotFoundResponse{Message: "No record found for this document"})
		case errors.Is(err, tablestore.ErrKeyColumnMissing):
			writeError(w, http.StatusBadRequest, "document column not found")
		default:
			logger.Error("lookup failed", "error", err, "request_id", requestID(r))
			writeError(w, http.StatusInternalServerError, "failed to fetch data")
		}
	}
}

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type CheckConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

func handleCheckConnection(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		title, err := store.Ping(ctx)
		if err != nil {
			logger.Error("connection check failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, CheckConnectionResponse{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, CheckConnectionResponse{
			Success: true,
			Message: "Conexión exitosa",
			Title:   title,
		})
	}
}

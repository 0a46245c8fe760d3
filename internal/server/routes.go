package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/juventudesmira/intake/internal/survey"
)

func addRoutes(r chi.Router, logger *slog.Logger, schema *survey.Schema, store Store, checks map[string]Checker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Intake API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, checks))

	r.Get("/questions", handleQuestions(schema))
	r.Get("/lookup/{key}", handleLookup(logger, store))
	r.Post("/submit", handleSubmit(logger, store))
	r.Get("/check-connection", handleCheckConnection(logger, store))
}

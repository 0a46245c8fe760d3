package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for error responses that carry no record.
type ErrorResponse struct {
	Error string `json:"error"`
}

type lookupPath struct {
	Key string `path:"key" description:"Document number, 7 to 12 digits."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Intake API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Lookup and upsert of youth survey registrations.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /questions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/questions")
	getQuestions.SetSummary("Questionnaire")
	getQuestions.SetDescription("Returns the questions in display order, the neighborhood zones and the closing message.")
	getQuestions.AddRespStructure(QuestionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getQuestions)

	// GET /lookup/{key}
	getLookup, _ := r.NewOperationContext(http.MethodGet, "/lookup/{key}")
	getLookup.SetSummary("Look up a registration")
	getLookup.SetDescription("Returns the stored record for a document number as header to value.")
	getLookup.AddReqStructure(lookupPath{})
	getLookup.AddRespStructure(LookupResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getLookup.AddRespStructure(NotFoundResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getLookup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getLookup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getLookup)

	// POST /submit
	postSubmit, _ := r.NewOperationContext(http.MethodPost, "/submit")
	postSubmit.SetSummary("Submit a registration")
	postSubmit.SetDescription("Stores a flat record, updating the row with the same document number when there is one.")
	postSubmit.AddReqStructure(SubmitRequest{})
	postSubmit.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSubmit.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSubmit.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postSubmit)

	// GET /check-connection
	getCheck, _ := r.NewOperationContext(http.MethodGet, "/check-connection")
	getCheck.SetSummary("Check storage connection")
	getCheck.SetDescription("Opens the backing spreadsheet and reports its title.")
	getCheck.AddRespStructure(CheckConnectionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getCheck.AddRespStructure(CheckConnectionResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getCheck)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

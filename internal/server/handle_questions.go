package server

import (
	"net/http"

	"github.com/juventudesmira/intake/internal/survey"
)

type QuestionsResponse struct {
	Questions []survey.Question `json:"questions"`
	Zones     []Municipality    `json:"zones"`
	Closing   string            `json:"closing"`
}

type Municipality struct {
	Name          string         `json:"name"`
	Neighborhoods []Neighborhood `json:"neighborhoods"`
}

type Neighborhood struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
}

func handleQuestions(schema *survey.Schema) http.HandlerFunc {
	resp := QuestionsResponse{
		Questions: schema.Questions(),
		Closing:   schema.Closing(),
	}
	zones := schema.Zones()
	for _, parent := range zones.Parents() {
		m := Municipality{Name: parent}
		for _, child := range zones.Children(parent) {
			zone, _ := zones.Lookup(parent, child)
			m.Neighborhoods = append(m.Neighborhoods, Neighborhood{Name: child, Zone: zone})
		}
		resp.Zones = append(resp.Zones, m)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

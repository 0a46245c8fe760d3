package form

import "github.com/juventudesmira/intake/internal/survey"

// Flatten turns answers into one flat record with exactly the schema's
// columns. Every column starts as "", group fields land in their own
// columns and multi-choice sets are joined with ", ".
func Flatten(s *survey.Schema, answers survey.Answers) map[string]string {
	out := make(map[string]string, len(s.Columns()))
	for _, c := range s.Columns() {
		out[c.Key] = ""
	}
	for _, q := range s.Questions() {
		v, ok := answers[q.Key()]
		if !ok {
			continue
		}
		if q.Kind == survey.KindCompositeGroup {
			for _, f := range q.Fields {
				out[f.Name] = v.Field(f.Name)
			}
			continue
		}
		out[q.Key()] = v.Serialize()
	}
	return out
}

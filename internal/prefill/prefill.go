// Package prefill turns a stored record back into form answers.
package prefill

import (
	"strings"

	"github.com/juventudesmira/intake/internal/survey"
)

// Map converts a header → value record into answers for s. Headers the
// schema does not know are ignored and missing headers read as "".
// Multi-choice cells are split on commas; an empty cell gives an empty set,
// never an absent answer.
func Map(s *survey.Schema, record map[string]string) survey.Answers {
	cols := make(map[string]string, len(s.Columns()))
	for _, c := range s.Columns() {
		cols[c.Key] = record[c.Header]
	}

	out := make(survey.Answers, len(s.Questions()))
	for _, q := range s.Questions() {
		switch q.Kind {
		case survey.KindCompositeGroup:
			fields := make(map[string]string, len(q.Fields))
			for _, f := range q.Fields {
				fields[f.Name] = cols[f.Name]
			}
			out[q.Key()] = survey.Group(fields)
		case survey.KindMultiChoice:
			out[q.Key()] = survey.Set(SplitOptions(cols[q.Key()], q.Options)...)
		default:
			out[q.Key()] = survey.Text(cols[q.Key()])
		}
	}
	return out
}

// SplitOptions splits a joined multi-choice cell. Consecutive pieces that
// together spell a known option are joined back, so options such as
// "Adobe (Photoshop, Illustrator)" survive. Unknown pieces that follow an
// "Otro: …" entry belong to its free text and are joined back into it.
func SplitOptions(cell string, options []string) []string {
	var pieces []string
	for _, p := range strings.Split(cell, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}

	known := make(map[string]bool, len(options))
	for _, o := range options {
		known[o] = true
	}

	out := make([]string, 0, len(pieces))
	for i := 0; i < len(pieces); {
		n := 1
		for j := len(pieces); j > i+1; j-- {
			if known[strings.Join(pieces[i:j], ", ")] {
				n = j - i
				break
			}
		}
		joined := strings.Join(pieces[i:i+n], ", ")
		if last := len(out) - 1; last >= 0 && !known[joined] && strings.HasPrefix(out[last], survey.OtherPrefix) {
			out[last] += ", " + joined
		} else {
			out = append(out, joined)
		}
		i += n
	}
	return out
}

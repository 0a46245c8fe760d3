package survey

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var questionsYAML []byte

var defaultSchema = sync.OnceValue(func() *Schema {
	s, err := Parse(questionsYAML)
	if err != nil {
		panic(fmt.Sprintf("survey: embedded questionnaire: %v", err))
	}
	return s
})

// Default returns the embedded questionnaire.
func Default() *Schema { return defaultSchema() }

type document struct {
	Closing     string       `yaml:"closing"`
	Derivations []Derivation `yaml:"derivations"`
	Questions   []Question   `yaml:"questions"`
	Zones       ZoneTable    `yaml:"zones"`
}

// Parse decodes a questionnaire document and checks its invariants.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding questionnaire: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Schema, error) {
	s := &Schema{
		closing:     doc.Closing,
		questions:   doc.Questions,
		byID:        make(map[string]int, len(doc.Questions)),
		byKey:       make(map[string]int, len(doc.Questions)),
		derivations: doc.Derivations,
		zones:       doc.Zones,
	}
	if len(doc.Questions) == 0 {
		return nil, errors.New("questionnaire has no questions")
	}

	columns := make(map[string]bool)
	addColumn := func(c Column) error {
		if columns[c.Key] {
			return fmt.Errorf("duplicate column %q", c.Key)
		}
		columns[c.Key] = true
		if c.Header == "" {
			c.Header = c.Key
		}
		s.columns = append(s.columns, c)
		return nil
	}

	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id", i+1)
		}
		if _, dup := s.byID[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		if !q.Kind.valid() {
			return nil, fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
		}
		if q.DependsOn != "" {
			if _, ok := s.byID[q.DependsOn]; !ok {
				return nil, fmt.Errorf("question %s: depends on %q, which is not an earlier question", q.ID, q.DependsOn)
			}
		}
		if q.Kind == KindDependentSelect && q.DependsOn == "" {
			return nil, fmt.Errorf("question %s: dependent-select without dependsOn", q.ID)
		}

		if q.Kind == KindCompositeGroup {
			if len(q.Fields) == 0 {
				return nil, fmt.Errorf("question %s: composite-group without fields", q.ID)
			}
			names := make(map[string]bool, len(q.Fields))
			for _, f := range q.Fields {
				if f.Name == "" {
					return nil, fmt.Errorf("question %s: field without name", q.ID)
				}
				if names[f.Name] {
					return nil, fmt.Errorf("question %s: duplicate field %q", q.ID, f.Name)
				}
				names[f.Name] = true
				switch f.Kind {
				case KindCompositeGroup, KindMultiChoice, KindDependentSelect:
					return nil, fmt.Errorf("question %s: field %s: kind %q not allowed in a group", q.ID, f.Name, f.Kind)
				}
				if !f.Kind.valid() {
					return nil, fmt.Errorf("question %s: field %s: unknown kind %q", q.ID, f.Name, f.Kind)
				}
				if err := addColumn(Column{Key: f.Name, Header: f.Header, QuestionID: q.ID, Field: f.Name}); err != nil {
					return nil, fmt.Errorf("question %s: %w", q.ID, err)
				}
			}
		} else if err := addColumn(Column{Key: q.Key(), Header: q.Header, QuestionID: q.ID}); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}

		s.byID[q.ID] = i
		s.byKey[q.Key()] = i
	}

	for _, d := range doc.Derivations {
		for _, id := range []string{d.Parent, d.Child, d.Target} {
			if _, ok := s.byID[id]; !ok {
				return nil, fmt.Errorf("derivation %s/%s -> %s: unknown question %q", d.Parent, d.Child, d.Target, id)
			}
		}
	}

	if !columns[DocumentColumn] {
		return nil, fmt.Errorf("questionnaire has no %s column", DocumentColumn)
	}
	return s, nil
}

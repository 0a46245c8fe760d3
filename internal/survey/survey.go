// Package survey defines the questionnaire schema, the answer values a
// session collects, and the fixed column layout of the stored table.
package survey

import "strings"

// Kind is the input kind of a question or group field.
type Kind string

const (
	KindSingleChoice    Kind = "single-choice"
	KindMultiChoice     Kind = "multi-choice"
	KindShortText       Kind = "short-text"
	KindLongText        Kind = "long-text"
	KindDate            Kind = "date"
	KindCompositeGroup  Kind = "composite-group"
	KindDependentSelect Kind = "dependent-select"
)

func (k Kind) valid() bool {
	switch k {
	case KindSingleChoice, KindMultiChoice, KindShortText, KindLongText,
		KindDate, KindCompositeGroup, KindDependentSelect:
		return true
	}
	return false
}

// Rule names a domain-specific refinement applied on top of the
// required/optional check.
type Rule string

const (
	RuleNone     Rule = ""
	RuleName     Rule = "name"
	RulePhone    Rule = "phone"
	RuleDocument Rule = "document"
)

// OtherOption is the escape-hatch choice that reveals a free-text input.
const OtherOption = "Otro"

// OtherPrefix prefixes the free text entered after choosing OtherOption.
const OtherPrefix = "Otro: "

// DocumentColumn is the column that keys stored rows.
const DocumentColumn = "numeroDocumento"

type Field struct {
	Name     string   `yaml:"name" json:"name"`
	Label    string   `yaml:"label" json:"label"`
	Header   string   `yaml:"header" json:"-"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Options  []string `yaml:"options" json:"options,omitempty"`
	Required bool     `yaml:"required" json:"required"`
	Rule     Rule     `yaml:"rule" json:"rule,omitempty"`
}

type Question struct {
	ID          string   `yaml:"id" json:"id"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Label       string   `yaml:"label" json:"label"`
	Header      string   `yaml:"header" json:"-"`
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Options     []string `yaml:"options" json:"options,omitempty"`
	Required    bool     `yaml:"required" json:"required"`
	ReadOnly    bool     `yaml:"readOnly" json:"readOnly,omitempty"`
	DependsOn   string   `yaml:"dependsOn" json:"dependsOn,omitempty"`
	Rule        Rule     `yaml:"rule" json:"rule,omitempty"`
	Fields      []Field  `yaml:"fields" json:"fields,omitempty"`
}

// Key returns the answer-set key of q: "group_<id>" for composite groups,
// "q_<id>" for everything else.
func (q Question) Key() string {
	if q.Kind == KindCompositeGroup {
		return "group_" + q.ID
	}
	return "q_" + q.ID
}

// Field returns the group field with the given name.
func (q Question) Field(name string) (Field, bool) {
	for _, f := range q.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasOption reports whether opt is one of q's fixed options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Derivation assigns Target from the zone table whenever both Parent and
// Child hold values that index it.
type Derivation struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
	Target string `yaml:"target"`
}

// Column is one flattened output column of the stored table.
type Column struct {
	Key        string
	Header     string
	QuestionID string
	// Field is set when the column comes from a composite-group field.
	Field string
}

// Schema is the parsed, read-only questionnaire.
type Schema struct {
	closing     string
	questions   []Question
	byID        map[string]int
	byKey       map[string]int
	derivations []Derivation
	zones       ZoneTable
	columns     []Column
}

// Questions returns the questions in display order. Callers must not
// modify the returned slice.
func (s *Schema) Questions() []Question { return s.questions }

// Question looks a question up by id.
func (s *Schema) Question(id string) (Question, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// QuestionByKey looks a question up by its answer-set key.
func (s *Schema) QuestionByKey(key string) (Question, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Keys returns every answer-set key in display order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.questions))
	for i, q := range s.questions {
		keys[i] = q.Key()
	}
	return keys
}

func (s *Schema) Closing() string           { return s.closing }
func (s *Schema) Zones() ZoneTable          { return s.zones }
func (s *Schema) Derivations() []Derivation { return s.derivations }
func (s *Schema) Columns() []Column         { return s.columns }

// ColumnOrder returns the stored column keys in position order.
func (s *Schema) ColumnOrder() []string {
	order := make([]string, len(s.columns))
	for i, c := range s.columns {
		order[i] = c.Key
	}
	return order
}

// Headers returns the header row the stored table must carry.
func (s *Schema) Headers() []string {
	headers := make([]string, len(s.columns))
	for i, c := range s.columns {
		headers[i] = c.Header
	}
	return headers
}

// ColumnIndex returns the position of the column with the given key, or -1.
func (s *Schema) ColumnIndex(key string) int {
	for i, c := range s.columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Options returns the selectable options of q given the current answers.
// A dependent-select offers the zone table's children of its parent's
// value and nothing while that value is unset or unknown.
func (s *Schema) Options(q Question, answers Answers) []string {
	if q.Kind != KindDependentSelect {
		return q.Options
	}
	parent, ok := s.Question(q.DependsOn)
	if !ok {
		return nil
	}
	v := strings.TrimSpace(answers[parent.Key()].Text())
	if v == "" {
		return nil
	}
	return s.zones.Children(v)
}

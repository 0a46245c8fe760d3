// Package validation derives per-answer validators from a questionnaire.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/juventudesmira/intake/internal/survey"
)

// DateLayout is the calendar date format date answers must use.
const DateLayout = "2006-01-02"

const (
	tagNoDigits = "nodigits"
	tagDigits   = "digits_only"
	tagDate     = "calendar_date"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must(tagNoDigits, func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
	})
	must(tagDigits, func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(stripSpaces(fl.Field().String()))
	})
	must(tagDate, func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	return v
}

func stripSpaces(s string) string { return strings.Join(strings.Fields(s), "") }

// Issue is one failed check.
type Issue struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Error carries every issue of a failed validation.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Key + ": " + is.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Keys returns the failing keys in order.
func (e *Error) Keys() []string {
	keys := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		keys[i] = is.Key
	}
	return keys
}

// Check validates a single answer. A nil result means valid.
type Check func(v survey.Value) []Issue

// Rules maps answer-set keys to their checks, in schema order.
type Rules struct {
	keys   []string
	checks map[string]Check
}

// Build derives the rules of every question in s.
func Build(s *survey.Schema) *Rules {
	r := &Rules{checks: make(map[string]Check, len(s.Questions()))}
	for _, q := range s.Questions() {
		key := q.Key()
		r.keys = append(r.keys, key)
		r.checks[key] = questionCheck(q)
	}
	return r
}

// Keys returns the validated keys in schema order.
func (r *Rules) Keys() []string { return r.keys }

// Check runs the rule for key. Keys without a rule are valid.
func (r *Rules) Check(key string, v survey.Value) []Issue {
	c, ok := r.checks[key]
	if !ok {
		return nil
	}
	return c(v)
}

// Validate checks every key of the schema against answers. Missing answers
// are checked as empty values.
func (r *Rules) Validate(answers survey.Answers) []Issue {
	var out []Issue
	for _, key := range r.keys {
		out = append(out, r.checks[key](answers[key])...)
	}
	return out
}

// Err is Validate returning an *Error, or nil when everything passes.
func (r *Rules) Err(answers survey.Answers) error {
	if issues := r.Validate(answers); len(issues) > 0 {
		return &Error{Issues: issues}
	}
	return nil
}

func questionCheck(q survey.Question) Check {
	key, label := q.Key(), displayName(q.Header, q.Label, q.ID)

	switch q.Kind {
	case survey.KindMultiChoice:
		if !q.Required {
			return func(survey.Value) []Issue { return nil }
		}
		return func(v survey.Value) []Issue {
			return issuesFor(key, label, validate.Var(v.Items(), "min=1"))
		}

	case survey.KindCompositeGroup:
		type fieldCheck struct {
			name, label, tag string
		}
		fields := make([]fieldCheck, 0, len(q.Fields))
		for _, f := range q.Fields {
			fields = append(fields, fieldCheck{
				name:  f.Name,
				label: displayName(f.Label, f.Header, f.Name),
				tag:   textTag(f.Kind, f.Required, f.Rule),
			})
		}
		return func(v survey.Value) []Issue {
			var out []Issue
			for _, f := range fields {
				if f.tag == "" {
					continue
				}
				out = append(out, issuesFor(key+"."+f.name, f.label, validate.Var(v.Field(f.name), f.tag))...)
			}
			return out
		}

	default:
		tag := textTag(q.Kind, q.Required, q.Rule)
		if tag == "" {
			return func(survey.Value) []Issue { return nil }
		}
		return func(v survey.Value) []Issue {
			return issuesFor(key, label, validate.Var(v.Text(), tag))
		}
	}
}

// textTag composes the validator tag for a text-valued answer. An empty tag
// means the answer is always valid.
func textTag(kind survey.Kind, required bool, rule survey.Rule) string {
	var refine []string
	switch rule {
	case survey.RuleName:
		refine = append(refine, tagNoDigits)
	case survey.RulePhone, survey.RuleDocument:
		refine = append(refine, tagDigits)
	}
	if kind == survey.KindDate {
		refine = append(refine, tagDate)
	}

	switch {
	case required:
		return strings.Join(append([]string{"required"}, refine...), ",")
	case len(refine) > 0:
		return strings.Join(append([]string{"omitempty"}, refine...), ",")
	}
	return ""
}

func issuesFor(key, label string, err error) []Issue {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Key: key, Message: err.Error()}}
	}
	out := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Issue{Key: key, Message: message(label, fe.Tag())})
	}
	return out
}

func message(label, tag string) string {
	switch tag {
	case "required", "min":
		return fmt.Sprintf("%s es requerido", label)
	case tagNoDigits:
		return fmt.Sprintf("%s no puede contener números", label)
	case tagDigits:
		return fmt.Sprintf("%s solo debe contener números", label)
	case tagDate:
		return fmt.Sprintf("%s no es una fecha válida", label)
	}
	return fmt.Sprintf("%s no es válido", label)
}

func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// Package form holds the answers of one questionnaire session and drives
// them from first input to a persisted submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/validation"
)

var (
	ErrUnknownKey     = errors.New("unknown answer key")
	ErrWrongShape     = errors.New("answer shape does not match question kind")
	ErrNoOtherOption  = errors.New("question has no Otro option")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrSubmitted      = errors.New("form already submitted")
)

// SubmitError wraps a failure reported by the Submitter. The engine stays
// editable and may be submitted again.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return "submitting answers: " + e.Err.Error() }
func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter persists a flattened payload.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]string) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload map[string]string) error

func (f SubmitterFunc) Submit(ctx context.Context, payload map[string]string) error {
	return f(ctx, payload)
}

type Option func(*Engine)

// WithAnswers starts the engine from prefilled answers. Prefilled keys are
// not marked dirty.
func WithAnswers(a survey.Answers) Option {
	return func(e *Engine) {
		for k, v := range a.Clone() {
			if _, ok := e.schema.QuestionByKey(k); ok {
				e.answers[k] = v
			}
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the state of one form session. It is safe for concurrent use,
// although a session is expected to have a single actor.
type Engine struct {
	schema *survey.Schema
	rules  *validation.Rules
	logger *slog.Logger

	mu       sync.Mutex
	answers  survey.Answers
	dirty    map[string]bool
	issues   map[string][]validation.Issue
	state    State
	progress int
}

func New(schema *survey.Schema, opts ...Option) *Engine {
	e := &Engine{
		schema:  schema,
		rules:   validation.Build(schema),
		logger:  slog.Default(),
		answers: make(survey.Answers),
		dirty:   make(map[string]bool),
		issues:  make(map[string][]validation.Issue),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.progress = e.computeProgress()
	return e
}

func (e *Engine) Schema() *survey.Schema { return e.schema }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Answers returns a copy of the current answers.
func (e *Engine) Answers() survey.Answers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Clone()
}

func (e *Engine) Value(key string) survey.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers[key]
}

// Dirty reports whether the user has set key during this session.
func (e *Engine) Dirty(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty[key]
}

// Progress is the share of answered questions, 0–100.
func (e *Engine) Progress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Issues returns the outstanding validation issues in schema order.
func (e *Engine) Issues() []validation.Issue {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []validation.Issue
	for _, key := range e.rules.Keys() {
		out = append(out, e.issues[key]...)
	}
	return out
}

// SetAnswer stores v under key. Group values merge into the fields already
// present; other values replace. A zero Value clears the answer.
func (e *Engine) SetAnswer(key string, v survey.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.editable(key)
	if err != nil {
		return err
	}
	if v.Shape() != survey.ShapeNone && v.Shape() != shapeOf(q.Kind) {
		return fmt.Errorf("%s: %w", key, ErrWrongShape)
	}

	switch {
	case v.Shape() == survey.ShapeNone:
		delete(e.answers, key)
	case v.Shape() == survey.ShapeGroup:
		merged := e.answers[key].Fields()
		if merged == nil {
			merged = make(map[string]string)
		}
		for name, f := range v.Fields() {
			if _, ok := q.Field(name); !ok {
				return fmt.Errorf("%s.%s: %w", key, name, ErrUnknownKey)
			}
			merged[name] = f
		}
		e.answers[key] = survey.Group(merged)
	default:
		e.answers[key] = v
	}

	e.touched(key)
	return nil
}

// SetGroupField sets one field of a composite group, leaving its other
// fields untouched.
func (e *Engine) SetGroupField(key, field, text string) error {
	return e.SetAnswer(key, survey.Group(map[string]string{field: text}))
}

// Toggle adds or removes option from a multi-choice answer. Removing the
// Otro option also drops the free-text "Otro: …" entry.
func (e *Engine) Toggle(key, option string, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.editable(key)
	if err != nil {
		return err
	}
	if q.Kind != survey.KindMultiChoice {
		return fmt.Errorf("%s: %w", key, ErrWrongShape)
	}

	items := e.answers[key].Items()
	if on {
		if !slices.Contains(items, option) {
			items = append(items, option)
		}
	} else {
		items = slices.DeleteFunc(items, func(it string) bool {
			return it == option || (option == survey.OtherOption && strings.HasPrefix(it, survey.OtherPrefix))
		})
	}
	e.answers[key] = survey.Set(items...)
	e.touched(key)
	return nil
}

// SetOther records the free text typed after choosing Otro as
// "Otro: <text>". Single choices are replaced; a multi-choice keeps at most
// one such entry. Group fields are addressed as "group_<id>.<field>".
func (e *Engine) SetOther(key, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	groupKey, field, isField := strings.Cut(key, ".")
	q, err := e.editable(groupKey)
	if err != nil {
		return err
	}
	other := survey.OtherPrefix + text

	if isField {
		f, ok := q.Field(field)
		if !ok {
			return fmt.Errorf("%s: %w", key, ErrUnknownKey)
		}
		if !slices.Contains(f.Options, survey.OtherOption) {
			return fmt.Errorf("%s: %w", key, ErrNoOtherOption)
		}
		fields := e.answers[groupKey].Fields()
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[field] = other
		e.answers[groupKey] = survey.Group(fields)
		e.touched(groupKey)
		return nil
	}

	if !q.HasOption(survey.OtherOption) {
		return fmt.Errorf("%s: %w", key, ErrNoOtherOption)
	}
	switch q.Kind {
	case survey.KindSingleChoice:
		e.answers[groupKey] = survey.Text(other)
	case survey.KindMultiChoice:
		items := slices.DeleteFunc(e.answers[groupKey].Items(), func(it string) bool {
			return strings.HasPrefix(it, survey.OtherPrefix)
		})
		e.answers[groupKey] = survey.Set(append(items, other)...)
	default:
		return fmt.Errorf("%s: %w", key, ErrNoOtherOption)
	}
	e.touched(groupKey)
	return nil
}

// Submit validates every answer and, when all pass, hands the flattened
// payload to sub. Validation failures return a *validation.Error without
// calling sub; submitter failures return a *SubmitError and leave the form
// editable. Only one submission may be in flight.
func (e *Engine) Submit(ctx context.Context, sub Submitter) error {
	e.mu.Lock()
	switch e.state {
	case StateSubmitted:
		e.mu.Unlock()
		return ErrSubmitted
	case StateSubmitting, StateValidating:
		e.mu.Unlock()
		return ErrSubmitInFlight
	}

	e.state = StateValidating
	issues := e.rules.Validate(e.answers)
	e.issues = groupIssues(issues)
	if len(issues) > 0 {
		e.state = StateValidationFailed
		e.mu.Unlock()
		return &validation.Error{Issues: issues}
	}

	payload := Flatten(e.schema, e.answers)
	e.state = StateSubmitting
	e.mu.Unlock()

	err := sub.Submit(ctx, payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateSubmitFailed
		e.logger.Warn("submission failed", "document", payload[survey.DocumentColumn], "error", err)
		return &SubmitError{Err: err}
	}
	e.state = StateSubmitted
	e.logger.Info("submission stored", "document", payload[survey.DocumentColumn])
	return nil
}

// editable resolves key and checks the engine accepts edits. Callers hold mu.
func (e *Engine) editable(key string) (survey.Question, error) {
	switch e.state {
	case StateSubmitted:
		return survey.Question{}, ErrSubmitted
	case StateSubmitting, StateValidating:
		return survey.Question{}, ErrSubmitInFlight
	}
	q, ok := e.schema.QuestionByKey(key)
	if !ok {
		return survey.Question{}, fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}
	return q, nil
}

// touched runs after every user mutation of key. Callers hold mu.
func (e *Engine) touched(key string) {
	e.dirty[key] = true
	e.state = StateEditing
	e.derive(key)
	if issues := e.rules.Check(key, e.answers[key]); len(issues) > 0 {
		e.issues[key] = issues
	} else {
		delete(e.issues, key)
	}
	e.progress = e.computeProgress()
}

func (e *Engine) derive(changed string) {
	zones := e.schema.Zones()
	for _, d := range e.schema.Derivations() {
		parent, _ := e.schema.Question(d.Parent)
		child, _ := e.schema.Question(d.Child)
		target, _ := e.schema.Question(d.Target)
		if changed != parent.Key() && changed != child.Key() {
			continue
		}
		e.deriveDependent(parent.Key(), child.Key(), target.Key(), zones)
	}
}

// deriveDependent assigns target from the table when both parent and child
// hold values that index it. Without an entry target keeps its value.
func (e *Engine) deriveDependent(parentKey, childKey, targetKey string, table survey.ZoneTable) {
	p := strings.TrimSpace(e.answers[parentKey].Text())
	c := strings.TrimSpace(e.answers[childKey].Text())
	if p == "" || c == "" {
		return
	}
	if zone, ok := table.Lookup(p, c); ok {
		e.answers[targetKey] = survey.Text(zone)
		delete(e.issues, targetKey)
	}
}

func (e *Engine) computeProgress() int {
	keys := e.rules.Keys()
	if len(keys) == 0 {
		return 0
	}
	filled := 0
	for _, k := range keys {
		if !e.answers[k].IsEmpty() {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / float64(len(keys))))
}

func shapeOf(k survey.Kind) survey.Shape {
	switch k {
	case survey.KindMultiChoice:
		return survey.ShapeSet
	case survey.KindCompositeGroup:
		return survey.ShapeGroup
	}
	return survey.ShapeText
}

func groupIssues(issues []validation.Issue) map[string][]validation.Issue {
	out := make(map[string][]validation.Issue)
	for _, is := range issues {
		key, _, _ := strings.Cut(is.Key, ".")
		out[key] = append(out[key], is)
	}
	return out
}

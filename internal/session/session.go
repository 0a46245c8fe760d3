// Package session drives a form from document lookup to submission and
// remembers the lookup between runs through a SessionCache.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/juventudesmira/intake/internal/cache"
	"github.com/juventudesmira/intake/internal/form"
	"github.com/juventudesmira/intake/internal/prefill"
	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

const (
	keyDocument = "document"
	keyRecord   = "record"
)

// ErrInvalidDocument rejects lookup keys that are not 7 to 12 digits.
var ErrInvalidDocument = errors.New("el número de documento debe tener entre 7 y 12 dígitos")

// Looker finds a stored record by document number. It returns
// tablestore.ErrKeyNotFound when there is none.
type Looker interface {
	Lookup(ctx context.Context, key string) (map[string]string, error)
}

// Session is one pass through the form.
type Session struct {
	ID       string
	Document string
	// Found is true when the form was prefilled from a stored record.
	Found  bool
	Engine *form.Engine
}

type Shell struct {
	schema    *survey.Schema
	looker    Looker
	submitter form.Submitter
	cache     cache.SessionCache
	logger    *slog.Logger
}

func NewShell(schema *survey.Schema, looker Looker, submitter form.Submitter, c cache.SessionCache, logger *slog.Logger) *Shell {
	return &Shell{schema: schema, looker: looker, submitter: submitter, cache: c, logger: logger}
}

// Start looks document up and opens a session prefilled with the stored
// record, or a blank registration carrying only the document number when
// there is none. The lookup is remembered for Resume.
func (s *Shell) Start(ctx context.Context, document string) (*Session, error) {
	document = strings.TrimSpace(document)
	if !survey.ValidDocumentNumber(document) {
		return nil, ErrInvalidDocument
	}

	record, err := s.looker.Lookup(ctx, document)
	switch {
	case errors.Is(err, tablestore.ErrKeyNotFound):
		// A record remembered for an earlier document must not pair with
		// this one on Resume.
		if err := s.cache.Clear(ctx); err != nil {
			return nil, fmt.Errorf("forgetting previous session: %w", err)
		}
		if err := s.cache.Set(ctx, keyDocument, document); err != nil {
			return nil, fmt.Errorf("remembering document: %w", err)
		}
		return s.open(document, nil), nil
	case err != nil:
		return nil, fmt.Errorf("looking up document: %w", err)
	}

	if err := s.remember(ctx, document, record); err != nil {
		return nil, err
	}
	return s.open(document, record), nil
}

// Resume reopens the session remembered by the last Start. It reports false
// when nothing complete is remembered; a corrupt entry is cleared.
func (s *Shell) Resume(ctx context.Context) (*Session, bool, error) {
	document, ok, err := s.cache.Get(ctx, keyDocument)
	if err != nil || !ok {
		return nil, false, err
	}
	raw, ok, err := s.cache.Get(ctx, keyRecord)
	if err != nil || !ok {
		return nil, false, err
	}

	var record map[string]string
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("dropping unreadable remembered record", "error", err)
		return nil, false, s.cache.Clear(ctx)
	}
	return s.open(document, record), true, nil
}

// Abandon forgets the remembered session. Nothing is persisted.
func (s *Shell) Abandon(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("forgetting session: %w", err)
	}
	return nil
}

// Submit submits the session's form and, once stored, forgets the
// remembered session.
func (s *Shell) Submit(ctx context.Context, sess *Session) error {
	if err := sess.Engine.Submit(ctx, s.submitter); err != nil {
		return err
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("clearing remembered session", "session_id", sess.ID, "error", err)
	}
	return nil
}

func (s *Shell) remember(ctx context.Context, document string, record map[string]string) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := s.cache.Set(ctx, keyDocument, document); err != nil {
		return fmt.Errorf("remembering document: %w", err)
	}
	if err := s.cache.Set(ctx, keyRecord, string(data)); err != nil {
		return fmt.Errorf("remembering record: %w", err)
	}
	return nil
}

func (s *Shell) open(document string, record map[string]string) *Session {
	id := uuid.NewString()
	logger := s.logger.With("session_id", id)

	var answers survey.Answers
	if record != nil {
		answers = prefill.Map(s.schema, record)
	} else {
		answers = s.blank(document)
	}
	logger.Info("session opened", "document", document, "found", record != nil)

	return &Session{
		ID:       id,
		Document: document,
		Found:    record != nil,
		Engine:   form.New(s.schema, form.WithAnswers(answers), form.WithLogger(logger)),
	}
}

// blank carries the looked-up document number into the document field.
func (s *Shell) blank(document string) survey.Answers {
	for _, q := range s.schema.Questions() {
		if _, ok := q.Field(survey.DocumentColumn); ok {
			return survey.Answers{q.Key(): survey.Group(map[string]string{survey.DocumentColumn: document})}
		}
	}
	return survey.Answers{}
}

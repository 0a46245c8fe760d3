package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/juventudesmira/intake/internal/form"
	"github.com/juventudesmira/intake/internal/survey"
)

// prompter asks questions line by line. An empty line keeps the current
// answer.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) confirm(prompt string) bool {
	s, err := p.line(prompt + " [s/N] ")
	return err == nil && (strings.EqualFold(s, "s") || strings.EqualFold(s, "si") || strings.EqualFold(s, "sí"))
}

// askAll walks the questions in order. A non-nil only limits the walk to
// those answer keys.
func (p *prompter) askAll(e *form.Engine, only map[string]bool) error {
	for _, q := range e.Schema().Questions() {
		if q.ReadOnly || (only != nil && !only[q.Key()]) {
			continue
		}
		if err := p.ask(e, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *prompter) ask(e *form.Engine, q survey.Question) error {
	for {
		err := p.askOnce(e, q)
		if errors.Is(err, errRetry) {
			continue
		}
		if err != nil {
			return err
		}
		for _, is := range e.Issues() {
			if k, _, _ := strings.Cut(is.Key, "."); k == q.Key() {
				fmt.Fprintf(p.out, "  ! %s\n", is.Message)
			}
		}
		return nil
	}
}

var errRetry = errors.New("retry")

func (p *prompter) askOnce(e *form.Engine, q survey.Question) error {
	cur := e.Value(q.Key())
	fmt.Fprintf(p.out, "\n%s\n", q.Label)

	switch q.Kind {
	case survey.KindCompositeGroup:
		for _, f := range q.Fields {
			fmt.Fprintf(p.out, "  %s\n", f.Label)
			s, err := p.choose(f.Options, cur.Field(f.Name), false)
			if err != nil {
				return err
			}
			if s == "" {
				continue
			}
			if s == survey.OtherOption && slices.Contains(f.Options, survey.OtherOption) {
				text, err := p.line("  Especifica: ")
				if err != nil {
					return err
				}
				if err := e.SetOther(q.Key()+"."+f.Name, text); err != nil {
					return err
				}
				continue
			}
			if err := e.SetGroupField(q.Key(), f.Name, s); err != nil {
				return err
			}
		}
		return nil

	case survey.KindMultiChoice:
		s, err := p.choose(q.Options, cur.Serialize(), true)
		if err != nil || s == "" {
			return err
		}
		picked, err := pickMany(q.Options, s)
		if err != nil {
			fmt.Fprintf(p.out, "  ! %v\n", err)
			return errRetry
		}
		if err := e.SetAnswer(q.Key(), survey.Set(picked...)); err != nil {
			return err
		}
		if survey.Set(picked...).Contains(survey.OtherOption) {
			text, err := p.line("  Especifica: ")
			if err != nil {
				return err
			}
			return e.SetOther(q.Key(), text)
		}
		return nil

	default:
		opts := e.Schema().Options(q, e.Answers())
		if q.Kind == survey.KindDependentSelect && len(opts) == 0 {
			fmt.Fprintln(p.out, "  (sin opciones para la respuesta anterior)")
			return nil
		}
		if q.Placeholder != "" && len(opts) == 0 {
			fmt.Fprintf(p.out, "  %s\n", q.Placeholder)
		}
		s, err := p.choose(opts, cur.Text(), false)
		if err != nil || s == "" {
			return err
		}
		if s == survey.OtherOption && q.HasOption(survey.OtherOption) {
			text, err := p.line("  Especifica: ")
			if err != nil {
				return err
			}
			return e.SetOther(q.Key(), text)
		}
		return e.SetAnswer(q.Key(), survey.Text(s))
	}
}

// choose lists options and reads a reply. With options, a reply is the
// number of an option, or several comma-separated numbers when many is set.
// Without options the reply is free text.
func (p *prompter) choose(options []string, current string, many bool) (string, error) {
	for i, o := range options {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, o)
	}
	prompt := "> "
	if current != "" {
		prompt = fmt.Sprintf("[%s] > ", current)
	}
	s, err := p.line(prompt)
	if err != nil || s == "" || len(options) == 0 || many {
		return s, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(options) {
		return s, nil
	}
	return options[n-1], nil
}

// pickMany resolves a comma-separated list of option numbers.
func pickMany(options []string, reply string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(reply, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("%q no es una opción", part)
		}
		out = append(out, options[n-1])
	}
	return out, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juventudesmira/intake/internal/form"
	"github.com/juventudesmira/intake/internal/session"
	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/validation"
)

var (
	fillAnswers string
	fillResume  bool
	fillAbandon bool
)

var fillCmd = &cobra.Command{
	Use:   "fill [document]",
	Short: "Fill the survey for a document number",
	Long: `Looks the document number up, prefills the form with the stored
registration when there is one and asks every question in order. Answers can
also be read from a YAML file keyed by answer key (q_2, group_6, ...).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVarP(&fillAnswers, "answers", "a", "", "YAML file with answers; skips the prompts")
	fillCmd.Flags().BoolVar(&fillResume, "resume", false, "continue the last looked-up registration")
	fillCmd.Flags().BoolVar(&fillAbandon, "abandon", false, "forget the last looked-up registration and exit")
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := newLogger()

	c, release, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer release()

	api := newClient()
	shell := session.NewShell(schema(), api, api, c, logger)

	if fillAbandon {
		if err := shell.Abandon(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Sesión olvidada.")
		return nil
	}

	sess, err := openSession(cmd, shell, args)
	if err != nil {
		return err
	}
	if sess.Found {
		fmt.Fprintln(out, "Encontramos tu registro. Revisa y actualiza tus datos.")
	} else {
		fmt.Fprintln(out, "No encontramos un registro. Completa el formulario para registrarte.")
	}

	if fillAnswers != "" {
		if err := applyFile(sess.Engine, fillAnswers); err != nil {
			return err
		}
		return submit(cmd, shell, sess)
	}

	p := newPrompter(cmd.InOrStdin(), out)
	if err := p.askAll(sess.Engine, nil); err != nil {
		return err
	}
	for {
		err := submit(cmd, shell, sess)
		var verr *validation.Error
		var serr *form.SubmitError
		switch {
		case errors.As(err, &verr):
			if err := p.askAll(sess.Engine, issueKeys(verr)); err != nil {
				return err
			}
		case errors.As(err, &serr):
			fmt.Fprintf(out, "No se pudo guardar: %v\n", serr.Err)
			if !p.confirm("¿Reintentar?") {
				return err
			}
		default:
			return err
		}
	}
}

func openSession(cmd *cobra.Command, shell *session.Shell, args []string) (*session.Session, error) {
	if fillResume {
		sess, ok, err := shell.Resume(cmd.Context())
		if err != nil {
			return nil, err
		}
		if ok {
			return sess, nil
		}
		if len(args) == 0 {
			return nil, errors.New("no remembered registration to resume")
		}
	}
	if len(args) == 0 {
		return nil, errors.New("a document number is required")
	}
	return shell.Start(cmd.Context(), args[0])
}

func submit(cmd *cobra.Command, shell *session.Shell, sess *session.Session) error {
	out := cmd.OutOrStdout()
	err := shell.Submit(cmd.Context(), sess)
	var verr *validation.Error
	if errors.As(err, &verr) {
		fmt.Fprintln(out, "Revisa las siguientes respuestas:")
		for _, is := range verr.Issues {
			fmt.Fprintf(out, "  - %s\n", is.Message)
		}
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, sess.Engine.Schema().Closing())
	return nil
}

// applyFile sets every answer found in a YAML document.
func applyFile(e *form.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing answers: %w", err)
	}
	for _, q := range e.Schema().Questions() {
		rv, ok := raw[q.Key()]
		if !ok {
			continue
		}
		v, err := survey.ValueFor(q, rv)
		if err != nil {
			return err
		}
		if err := e.SetAnswer(q.Key(), v); err != nil {
			return err
		}
	}
	return nil
}

// issueKeys returns the distinct answer keys named by err, group fields
// folded into their group.
func issueKeys(err *validation.Error) map[string]bool {
	keys := make(map[string]bool)
	for _, is := range err.Issues {
		key, _, _ := strings.Cut(is.Key, ".")
		keys[key] = true
	}
	return keys
}

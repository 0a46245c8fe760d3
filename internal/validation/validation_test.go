package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/validation"
)

func validAnswers() survey.Answers {
	return survey.Answers{
		"q_1":     survey.Text("Sí"),
		"q_2":     survey.Text("Juan Pérez"),
		"q_3":     survey.Text("Masculino"),
		"q_4":     survey.Text("2001-04-30"),
		"q_5":     survey.Text("300 123 4567"),
		"group_6": survey.Group(map[string]string{"tipoDocumento": "C.C.", "numeroDocumento": "1234567890"}),
		"q_7":     survey.Text("No aplica"),
		"q_8":     survey.Text("Itagüí"),
		"q_8b":    survey.Text("Centro"),
		"q_9":     survey.Text("Calle 51 Nº 40 - 159"),
		"q_10":    survey.Text("No aplica"),
		"q_11":    survey.Text("No"),
		"q_14":    survey.Set("Fútbol"),
		"q_15":    survey.Set("Ninguna"),
		"q_16":    survey.Set("Scout"),
		"q_20":    survey.Text("No"),
		"q_22":    survey.Text("2 años"),
		"q_23":    survey.Text("Culto de la tarde - 6:30 PM"),
	}
}

func TestBuildKeys(t *testing.T) {
	rules := validation.Build(survey.Default())
	keys := rules.Keys()

	require.Len(t, keys, 25)
	assert.Equal(t, "q_1", keys[0])
	assert.Contains(t, keys, "group_6")
	assert.NotContains(t, keys, "numeroDocumento")
}

func TestValidAnswers(t *testing.T) {
	rules := validation.Build(survey.Default())
	assert.Empty(t, rules.Validate(validAnswers()))
	assert.NoError(t, rules.Err(validAnswers()))
}

func TestEveryRequiredQuestionIsEnforced(t *testing.T) {
	s := survey.Default()
	rules := validation.Build(s)

	for _, q := range s.Questions() {
		if !q.Required {
			continue
		}
		t.Run(q.Key(), func(t *testing.T) {
			answers := validAnswers()
			delete(answers, q.Key())

			err := rules.Err(answers)
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Keys(), q.Key())
		})
	}
}

func TestOptionalQuestionsAcceptEmpty(t *testing.T) {
	rules := validation.Build(survey.Default())
	for _, key := range []string{"q_8c", "q_12", "q_13", "q_17", "q_18", "q_19", "q_21"} {
		assert.Empty(t, rules.Check(key, survey.Value{}), key)
		assert.Empty(t, rules.Check(key, survey.Text("")), key)
	}
	assert.Empty(t, rules.Check("q_18", survey.Set()))
}

func TestRequiredMultiChoiceRejectsEmptySet(t *testing.T) {
	rules := validation.Build(survey.Default())

	issues := rules.Check("q_14", survey.Set())
	require.Len(t, issues, 1)
	assert.Equal(t, "q_14", issues[0].Key)
	assert.Contains(t, issues[0].Message, "es requerido")

	assert.Empty(t, rules.Check("q_14", survey.Set("Ajedrez")))
}

func TestNameRule(t *testing.T) {
	rules := validation.Build(survey.Default())

	issues := rules.Check("q_2", survey.Text("Juan5"))
	require.Len(t, issues, 1)
	assert.Equal(t, "q_2", issues[0].Key)
	assert.Contains(t, issues[0].Message, "números")

	assert.Empty(t, rules.Check("q_2", survey.Text("Juan Pérez")))
}

func TestDigitRules(t *testing.T) {
	rules := validation.Build(survey.Default())

	tests := []struct {
		name  string
		key   string
		value survey.Value
		want  []string
	}{
		{"phone with spaces", "q_5", survey.Text("300 123 4567"), nil},
		{"phone with dash", "q_5", survey.Text("300-123"), []string{"q_5"}},
		{"document ok", "group_6", survey.Group(map[string]string{"tipoDocumento": "C.C.", "numeroDocumento": "12 345 678"}), nil},
		{"document letters", "group_6", survey.Group(map[string]string{"tipoDocumento": "C.C.", "numeroDocumento": "12A"}), []string{"group_6.numeroDocumento"}},
		{"group missing both", "group_6", survey.Group(nil), []string{"group_6.tipoDocumento", "group_6.numeroDocumento"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, is := range rules.Check(tt.key, tt.value) {
				keys = append(keys, is.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestDateRule(t *testing.T) {
	rules := validation.Build(survey.Default())

	assert.Empty(t, rules.Check("q_4", survey.Text("2000-02-29")))
	assert.NotEmpty(t, rules.Check("q_4", survey.Text("2001-02-29")))
	assert.NotEmpty(t, rules.Check("q_4", survey.Text("30/04/2001")))
}

func TestUnknownKeyIsValid(t *testing.T) {
	rules := validation.Build(survey.Default())
	assert.Nil(t, rules.Check("q_99", survey.Text("x")))
}

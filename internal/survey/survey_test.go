package survey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juventudesmira/intake/internal/survey"
)

func TestDefaultSchema(t *testing.T) {
	s := survey.Default()

	require.Len(t, s.Questions(), 25)
	assert.Equal(t, []string{
		"q_1", "q_2", "q_3", "q_4", "q_5", "tipoDocumento", "numeroDocumento",
		"q_7", "q_8", "q_8b", "q_8c", "q_9", "q_10", "q_11", "q_12", "q_13",
		"q_14", "q_15", "q_16", "q_17", "q_18", "q_19", "q_20", "q_21", "q_22", "q_23",
	}, s.ColumnOrder())

	headers := s.Headers()
	require.Len(t, headers, 26)
	assert.Equal(t, "Aceptación Política de Datos", headers[0])
	assert.Equal(t, "Número de Documento", headers[6])
	assert.Equal(t, "Horario de Culto Preferido", headers[25])
	assert.Equal(t, 6, s.ColumnIndex(survey.DocumentColumn))
	assert.Equal(t, -1, s.ColumnIndex("q_6"))

	q, ok := s.Question("6")
	require.True(t, ok)
	assert.Equal(t, "group_6", q.Key())
	f, ok := q.Field("numeroDocumento")
	require.True(t, ok)
	assert.Equal(t, survey.RuleDocument, f.Rule)

	q, ok = s.QuestionByKey("q_8b")
	require.True(t, ok)
	assert.Equal(t, survey.KindDependentSelect, q.Kind)
	assert.Equal(t, "8", q.DependsOn)

	assert.Equal(t, []survey.Derivation{{Parent: "8", Child: "8b", Target: "8c"}}, s.Derivations())
	assert.NotEmpty(t, s.Closing())
}

func TestZoneTableKeepsOrder(t *testing.T) {
	z := survey.Default().Zones()

	assert.Equal(t, []string{"Itagüí", "Sabaneta", "San Antonio de Prado", "La Estrella"}, z.Parents())
	assert.Equal(t, "Zona Industrial 01", z.Children("Itagüí")[0])

	zone, ok := z.Lookup("Itagüí", "Centro")
	require.True(t, ok)
	assert.Equal(t, "Comuna 1", zone)

	zone, ok = z.Lookup("Sabaneta", "San José")
	require.True(t, ok)
	assert.Equal(t, "Comité San José", zone)

	_, ok = z.Lookup("Envigado", "Centro")
	assert.False(t, ok)
}

func TestDependentSelectOptions(t *testing.T) {
	s := survey.Default()
	q, _ := s.Question("8b")

	assert.Empty(t, s.Options(q, survey.Answers{}), "no parent value")
	assert.Empty(t, s.Options(q, survey.Answers{"q_8": survey.Text("Envigado")}), "parent without neighborhoods")

	opts := s.Options(q, survey.Answers{"q_8": survey.Text("Itagüí")})
	assert.Contains(t, opts, "Centro")
	assert.NotContains(t, opts, "Betania")

	plain, _ := s.Question("3")
	assert.Equal(t, []string{"Femenino", "Masculino", "Otro"}, s.Options(plain, nil))
}

func TestParseRejectsBrokenSchemas(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "duplicate id",
			doc: `
questions:
  - {id: "1", kind: short-text}
  - {id: "1", kind: short-text}
`,
			want: "duplicate id",
		},
		{
			name: "depends on later question",
			doc: `
questions:
  - {id: "1", kind: dependent-select, dependsOn: "2"}
  - {id: "2", kind: single-choice}
`,
			want: "not an earlier question",
		},
		{
			name: "duplicate group field",
			doc: `
questions:
  - id: "1"
    kind: composite-group
    fields:
      - {name: numeroDocumento, kind: short-text}
      - {name: numeroDocumento, kind: short-text}
`,
			want: "duplicate field",
		},
		{
			name: "unknown kind",
			doc: `
questions:
  - {id: "1", kind: slider}
`,
			want: "unknown kind",
		},
		{
			name: "no document column",
			doc: `
questions:
  - {id: "1", kind: short-text}
`,
			want: "numeroDocumento",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := survey.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValueShapes(t *testing.T) {
	assert.True(t, survey.Value{}.IsEmpty())
	assert.True(t, survey.Text("").IsEmpty())
	assert.True(t, survey.Set().IsEmpty())
	assert.True(t, survey.Group(map[string]string{"tipoDocumento": ""}).IsEmpty())
	assert.False(t, survey.Group(map[string]string{"tipoDocumento": "C.C."}).IsEmpty())

	assert.True(t, survey.Set("a", "b").Equal(survey.Set("b", "a")))
	assert.True(t, survey.Set().Equal(survey.Value{}))
	assert.False(t, survey.Set("a").Equal(survey.Text("a")))

	assert.Equal(t, "Fútbol, Ajedrez", survey.Set("Fútbol", "Ajedrez", "Fútbol").Serialize())
}

func TestValueFor(t *testing.T) {
	s := survey.Default()

	group, _ := s.Question("6")
	v, err := survey.ValueFor(group, map[string]any{"tipoDocumento": "C.C.", "numeroDocumento": float64(1234567890)})
	require.NoError(t, err)
	assert.Equal(t, "1234567890", v.Field("numeroDocumento"))

	_, err = survey.ValueFor(group, map[string]any{"color": "azul"})
	assert.Error(t, err)

	multi, _ := s.Question("14")
	v, err = survey.ValueFor(multi, []any{"Ajedrez", "BMX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ajedrez", "BMX"}, v.Items())

	text, _ := s.Question("2")
	_, err = survey.ValueFor(text, []any{"x"})
	assert.Error(t, err)
}

func TestValidDocumentNumber(t *testing.T) {
	assert.True(t, survey.ValidDocumentNumber("1234567"))
	assert.True(t, survey.ValidDocumentNumber("123456789012"))
	assert.False(t, survey.ValidDocumentNumber("123456"))
	assert.False(t, survey.ValidDocumentNumber("1234 567"))
}

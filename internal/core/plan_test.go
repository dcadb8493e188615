package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlanJSON = `{
  "titulo_plano": "A Fábrica Verde",
  "tema_principal": "Fotossíntese",
  "publico_alvo": "6º ano",
  "duracao_estimada": "Indefinida",
  "introducao_ludica": {"titulo": "A Caixa Misteriosa", "descricao": "Uma planta escondida numa caixa escura."},
  "objetivo_bncc": {"codigo": "EF06CI05", "descricao": "Explicar a organização básica das células."},
  "passos_da_atividade": [
    {"passo": 1, "titulo": "Aquecimento", "duracao_sugerida": "10 minutos", "detalhamento": "Perguntas sobre plantas."},
    {"passo": 2, "titulo": "Mão na Massa", "duracao_sugerida": "30 minutos", "detalhamento": "Experimento com folhas."},
    {"passo": 3, "titulo": "Conclusão", "duracao_sugerida": "10 minutos", "detalhamento": "Síntese coletiva."}
  ],
  "rubrica_avaliacao": {
    "foco_da_avaliacao": "Compreensão do Conceito",
    "criterios": [
      {"nivel": "Nível 3: Excelente", "descricao": "Domina o conceito."},
      {"nivel": "Nível 2: Satisfatório", "descricao": "Compreende o conceito."},
      {"nivel": "Nível 1: Em Desenvolvimento", "descricao": "Precisa de apoio."}
    ]
  },
  "materiais_necessarios": "Folhas, copos transparentes e água."
}`

func TestParsePlan_Valid(t *testing.T) {
	p, err := ParsePlan([]byte(validPlanJSON))
	require.NoError(t, err)
	assert.Equal(t, "A Fábrica Verde", p.TituloPlano)
	assert.Len(t, p.PassosDaAtividade, 3)
	assert.Equal(t, "EF06CI05", p.ObjetivoBNCC.Codigo)
}

func TestParsePlan_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "not json",
			raw:  "Aqui está o seu plano!",
			want: "decode plan",
		},
		{
			name: "unknown field",
			raw:  strings.Replace(validPlanJSON, `"titulo_plano"`, `"extra": 1, "titulo_plano"`, 1),
			want: "unknown field",
		},
		{
			name: "empty title",
			raw:  strings.Replace(validPlanJSON, `"A Fábrica Verde"`, `"  "`, 1),
			want: "titulo_plano",
		},
		{
			name: "two steps",
			raw:  strings.Replace(validPlanJSON, `,
    {"passo": 3, "titulo": "Conclusão", "duracao_sugerida": "10 minutos", "detalhamento": "Síntese coletiva."}`, "", 1),
			want: "want 3 steps",
		},
		{
			name: "steps out of order",
			raw:  strings.Replace(validPlanJSON, `{"passo": 2,`, `{"passo": 5,`, 1),
			want: "want passo 2",
		},
		{
			name: "missing criterion",
			raw:  strings.Replace(validPlanJSON, `,
      {"nivel": "Nível 1: Em Desenvolvimento", "descricao": "Precisa de apoio."}`, "", 1),
			want: "want 3 criteria",
		},
		{
			name: "trailing data",
			raw:  validPlanJSON + `{}`,
			want: "trailing data",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tc.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildPrompt_SubstitutesEveryPlaceholder(t *testing.T) {
	prompt := BuildPrompt(NormalizeKey(CreateRequest{Tema: "Fotossíntese", PublicoAlvo: "6º ano"}))

	assert.Contains(t, prompt, "* Tema: Fotossíntese")
	assert.Contains(t, prompt, "* Público/Ano Escolar: 6º ano")
	assert.Contains(t, prompt, "* Duração Estimada: Indefinida")
	assert.Contains(t, prompt, "* Materiais Disponíveis: Não informado")
	assert.Contains(t, prompt, `"tema_principal": "Fotossíntese"`)
	assert.Contains(t, prompt, `"duracao_estimada": "Indefinida"`)
	for _, ph := range []string{placeholderTema, placeholderPublico, placeholderDuracao, placeholderMateriais} {
		assert.NotContains(t, prompt, ph)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	key := NormalizeKey(CreateRequest{Tema: "Frações", PublicoAlvo: "4º ano", Duracao: strPtr("50 minutos")})
	assert.Equal(t, BuildPrompt(key), BuildPrompt(key))
	assert.Contains(t, BuildPrompt(key), "* Duração Estimada: 50 minutos")
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequest
		want [2]string
	}{
		{"nil optionals", CreateRequest{Tema: "T", PublicoAlvo: "P"}, [2]string{"Indefinida", "Não informado"}},
		{"empty optionals", CreateRequest{Tema: "T", PublicoAlvo: "P", Duracao: strPtr(""), Materiais: strPtr("")}, [2]string{"Indefinida", "Não informado"}},
		{"given optionals", CreateRequest{Tema: "T", PublicoAlvo: "P", Duracao: strPtr("1h"), Materiais: strPtr("Lousa")}, [2]string{"1h", "Lousa"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k := NormalizeKey(tc.req)
			assert.Equal(t, "T", k.Tema)
			assert.Equal(t, "P", k.PublicoAlvo)
			assert.Equal(t, tc.want[0], k.Duracao)
			assert.Equal(t, tc.want[1], k.Materiais)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("  ```\n{\"a\":1}```  "))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func strPtr(s string) *string { return &s }

package core

import (
	"strings"

	"github.com/lsguilherme/desafio-escribo-2/internal/store"
)

// Sentinels stand in for absent optional inputs so they still take part in
// exact-match cache keys and in the prompt.
const (
	DuracaoSentinel   = "Indefinida"
	MateriaisSentinel = "Não informado"
)

const (
	placeholderTema      = "{TEMA_INPUT}"
	placeholderPublico   = "{PUBLICO_INPUT}"
	placeholderDuracao   = "{DURACAO_INPUT}"
	placeholderMateriais = "{MATERIAIS_INPUT}"
)

const promptTemplate = `Você é um IA especialista em Didática e Pedagogia, focado na criação de planos de aula alinhados à Base Nacional Comum Curricular (BNCC). Seu objetivo é gerar um plano de aula completo, criativo e estruturado.

**REGRA DE SAÍDA CRÍTICA:**
1. A saída deve ser ESTRITAMENTE um objeto JSON VÁLIDO. Nenhum comentário, explicação ou marcador de código externo é permitido.
2. Preencha todos os campos do ESQUEMA JSON OBRIGATÓRIO abaixo com dados relevantes e educativos.

**DADOS DE ENTRADA DO USUÁRIO:**
* Tema: {TEMA_INPUT}
* Público/Ano Escolar: {PUBLICO_INPUT}
* Duração Estimada: {DURACAO_INPUT}
* Materiais Disponíveis: {MATERIAIS_INPUT}

**ESQUEMA JSON OBRIGATÓRIO (PARA SAÍDA):**
{
  "titulo_plano": "Sugestão de título envolvente e educativo para o plano de aula",
  "tema_principal": "{TEMA_INPUT}",
  "publico_alvo": "{PUBLICO_INPUT}",
  "duracao_estimada": "{DURACAO_INPUT}",
  "introducao_ludica": {
    "titulo": "Título criativo da dinâmica de abertura (Ex: 'A Caixa Misteriosa')",
    "descricao": "Uma forma criativa e engajadora de apresentar o tema, capturando a atenção dos alunos. Deve ser uma atividade curta e divertida. Mínimo de 3 frases."
  },
  "objetivo_bncc": {
    "codigo": "Sugestão do Código BNCC mais relevante e específico (Ex: EF05GE01, EM13LGG101)",
    "descricao": "Descrição do Objetivo de Aprendizagem da BNCC alinhado ao Tema e ao Público alvo."
  },
  "passos_da_atividade": [
    {
      "passo": 1,
      "titulo": "Passo 1: Aquecimento e Exploração Inicial",
      "duracao_sugerida": "10-15 minutos",
      "detalhamento": "Roteiro detalhado de o que a professora deve fazer e como os alunos devem interagir para iniciar a aula."
    },
    {
      "passo": 2,
      "titulo": "Passo 2: Desenvolvimento (Mão na Massa)",
      "duracao_sugerida": "Duração principal da aula",
      "detalhamento": "Roteiro detalhado da atividade central (experimento, debate, produção de texto, etc.), explicando o papel do aluno e do professor."
    },
    {
      "passo": 3,
      "titulo": "Passo 3: Conclusão e Sistematização",
      "duracao_sugerida": "10 minutos",
      "detalhamento": "Roteiro para o encerramento, incluindo a correção, debate final e síntese do aprendizado que conecta ao objetivo da BNCC."
    }
  ],
  "rubrica_avaliacao": {
    "foco_da_avaliacao": "O aspecto central que será avaliado no aluno (Ex: Compreensão do Conceito, Participação e Colaboração)",
    "criterios": [
      {
        "nivel": "Nível 3: Excelente",
        "descricao": "Critério para o aluno que demonstra domínio completo do objetivo, participação ativa e criatividade."
      },
      {
        "nivel": "Nível 2: Satisfatório",
        "descricao": "Critério para o aluno que demonstra compreensão clara do objetivo, mas com pouca profundidade ou criatividade."
      },
      {
        "nivel": "Nível 1: Em Desenvolvimento",
        "descricao": "Critério para o aluno que demonstra dificuldade em aplicar o conceito ou pouca participação, necessitando de suporte."
      }
    ]
  },
  "materiais_necessarios": "Lista de materiais sugeridos com base nos {MATERIAIS_INPUT} fornecidos, ou sugestão de substituição se necessário."
}
`

// BuildPrompt fills every placeholder occurrence in the template with the
// normalized key values.
func BuildPrompt(key store.CacheKey) string {
	r := strings.NewReplacer(
		placeholderTema, key.Tema,
		placeholderPublico, key.PublicoAlvo,
		placeholderDuracao, key.Duracao,
		placeholderMateriais, key.Materiais,
	)
	return r.Replace(promptTemplate)
}

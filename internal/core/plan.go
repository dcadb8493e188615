package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Plan is the fixed shape the model must return. The JSON field names are a
// contract with the UI and must not change.
type Plan struct {
	TituloPlano          string             `json:"titulo_plano"`
	TemaPrincipal        string             `json:"tema_principal"`
	PublicoAlvo          string             `json:"publico_alvo"`
	DuracaoEstimada      string             `json:"duracao_estimada"`
	IntroducaoLudica     IntroducaoLudica   `json:"introducao_ludica"`
	ObjetivoBNCC         ObjetivoBNCC       `json:"objetivo_bncc"`
	PassosDaAtividade    []PassoDaAtividade `json:"passos_da_atividade"`
	RubricaAvaliacao     RubricaAvaliacao   `json:"rubrica_avaliacao"`
	MateriaisNecessarios string             `json:"materiais_necessarios"`
}

type IntroducaoLudica struct {
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
}

type ObjetivoBNCC struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
}

type PassoDaAtividade struct {
	Passo           int    `json:"passo"`
	Titulo          string `json:"titulo"`
	DuracaoSugerida string `json:"duracao_sugerida"`
	Detalhamento    string `json:"detalhamento"`
}

type RubricaAvaliacao struct {
	FocoDaAvaliacao string     `json:"foco_da_avaliacao"`
	Criterios       []Criterio `json:"criterios"`
}

type Criterio struct {
	Nivel     string `json:"nivel"`
	Descricao string `json:"descricao"`
}

const (
	planSteps    = 3
	planCriteria = 3
)

// ParsePlan decodes raw into a Plan, rejecting unknown fields and trailing
// data, and validates it.
func ParsePlan(raw []byte) (*Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode plan: trailing data after JSON object")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every text field is filled, that there are exactly
// three steps numbered 1..3 in order, and exactly three rubric criteria.
func (p *Plan) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"titulo_plano", p.TituloPlano},
		{"tema_principal", p.TemaPrincipal},
		{"publico_alvo", p.PublicoAlvo},
		{"duracao_estimada", p.DuracaoEstimada},
		{"introducao_ludica.titulo", p.IntroducaoLudica.Titulo},
		{"introducao_ludica.descricao", p.IntroducaoLudica.Descricao},
		{"objetivo_bncc.codigo", p.ObjetivoBNCC.Codigo},
		{"objetivo_bncc.descricao", p.ObjetivoBNCC.Descricao},
		{"rubrica_avaliacao.foco_da_avaliacao", p.RubricaAvaliacao.FocoDaAvaliacao},
		{"materiais_necessarios", p.MateriaisNecessarios},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("field %s is empty", r.field)
		}
	}

	if len(p.PassosDaAtividade) != planSteps {
		return fmt.Errorf("passos_da_atividade: want %d steps, got %d", planSteps, len(p.PassosDaAtividade))
	}
	for i, passo := range p.PassosDaAtividade {
		if passo.Passo != i+1 {
			return fmt.Errorf("passos_da_atividade[%d]: want passo %d, got %d", i, i+1, passo.Passo)
		}
		if strings.TrimSpace(passo.Titulo) == "" || strings.TrimSpace(passo.DuracaoSugerida) == "" || strings.TrimSpace(passo.Detalhamento) == "" {
			return fmt.Errorf("passos_da_atividade[%d]: titulo, duracao_sugerida and detalhamento are required", i)
		}
	}

	if len(p.RubricaAvaliacao.Criterios) != planCriteria {
		return fmt.Errorf("rubrica_avaliacao.criterios: want %d criteria, got %d", planCriteria, len(p.RubricaAvaliacao.Criterios))
	}
	for i, c := range p.RubricaAvaliacao.Criterios {
		if strings.TrimSpace(c.Nivel) == "" || strings.TrimSpace(c.Descricao) == "" {
			return fmt.Errorf("rubrica_avaliacao.criterios[%d]: nivel and descricao are required", i)
		}
	}

	return nil
}

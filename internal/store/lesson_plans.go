package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const lessonPlanColumns = "id, tema, publico_alvo, duracao, materiais_disponiveis, plano_json, user_id, data_geracao"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLessonPlan(row rowScanner) (*LessonPlan, error) {
	var p LessonPlan
	var duracao, materiais sql.NullString
	var plan string
	if err := row.Scan(&p.ID, &p.Tema, &p.PublicoAlvo, &duracao, &materiais, &plan, &p.UserID, &p.DataGeracao); err != nil {
		return nil, err
	}
	if duracao.Valid {
		p.Duracao = &duracao.String
	}
	if materiais.Valid {
		p.Materiais = &materiais.String
	}
	p.PlanoJSON = []byte(plan)
	return &p, nil
}

// prepareLessonPlan returns a copy of plan stamped with a new id, the owner
// and the generation time.
func prepareLessonPlan(owner Owner, plan *LessonPlan) *LessonPlan {
	p := *plan
	p.ID = uuid.NewString()
	p.UserID = owner.UserID
	p.DataGeracao = time.Now().UTC()
	return &p
}

package store

import (
	"encoding/json"
	"time"
)

// LessonPlan is a generated plan owned by one user. Duracao and Materiais
// hold the raw request values, nil when the professor left them blank.
type LessonPlan struct {
	ID          string          `json:"id"`
	Tema        string          `json:"tema"`
	PublicoAlvo string          `json:"publico_alvo"`
	Duracao     *string         `json:"duracao"`
	Materiais   *string         `json:"materiais_disponiveis"`
	PlanoJSON   json.RawMessage `json:"plano_json"`
	UserID      string          `json:"user_id"`
	DataGeracao time.Time       `json:"data_geracao"`
}

// CacheKey is the normalized input tuple. Absent optional inputs are already
// replaced by their sentinels, so every field participates in the match.
type CacheKey struct {
	Tema        string
	PublicoAlvo string
	Duracao     string
	Materiais   string
}

type CacheEntry struct {
	ID int64
	CacheKey
	GeneratedPlanJSON json.RawMessage
	CreatedAt         time.Time
}

// Owner scopes reads and writes of lesson plans to one authenticated user.
type Owner struct {
	UserID string
	Role   string
}

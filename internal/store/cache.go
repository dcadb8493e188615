package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const cacheTable = "lesson_plan_cache"

// cacheRepo holds the cache queries shared by both stores; only the
// placeholder format differs between SQLite and Postgres.
type cacheRepo struct {
	db DBTX
	sq sq.StatementBuilderType
}

func (r *cacheRepo) lookup(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	q := r.sq.Select(
		"id",
		"tema",
		"publico_alvo",
		"duracao",
		"materiais_disponiveis",
		"generated_plan_json",
		"created_at",
	).
		From(cacheTable).
		Where(sq.Eq{
			"tema":                  key.Tema,
			"publico_alvo":          key.PublicoAlvo,
			"duracao":               key.Duracao,
			"materiais_disponiveis": key.Materiais,
		}).
		OrderBy("id").
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache lookup: %w", err)
	}

	var e CacheEntry
	var plan string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&e.ID,
		&e.Tema,
		&e.PublicoAlvo,
		&e.Duracao,
		&e.Materiais,
		&plan,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	e.GeneratedPlanJSON = []byte(plan)
	return &e, nil
}

func (r *cacheRepo) insert(ctx context.Context, entry *CacheEntry) error {
	q := r.sq.
		Insert(cacheTable).
		Columns(
			"tema",
			"publico_alvo",
			"duracao",
			"materiais_disponiveis",
			"generated_plan_json",
		).
		Values(
			entry.Tema,
			entry.PublicoAlvo,
			entry.Duracao,
			entry.Materiais,
			string(entry.GeneratedPlanJSON),
		).
		Suffix("ON CONFLICT (tema, publico_alvo, duracao, materiais_disponiveis) DO NOTHING")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

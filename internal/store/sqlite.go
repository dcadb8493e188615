package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps everything in one database file. SQLite has no roles,
// so ownership is enforced by the user_id predicates alone.
type SQLiteStore struct {
	db    *sql.DB
	cache *cacheRepo
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{
		db:    db,
		cache: &cacheRepo{db: db, sq: sq.StatementBuilder.PlaceholderFormat(sq.Question)},
	}
	if err = store.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS planos_de_aula (
        id TEXT PRIMARY KEY, -- UUID
        tema TEXT NOT NULL,
        publico_alvo TEXT NOT NULL,
        duracao TEXT,
        materiais_disponiveis TEXT,
        plano_json TEXT NOT NULL,
        user_id TEXT NOT NULL,
        data_geracao DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_planos_de_aula_user
        ON planos_de_aula (user_id, data_geracao DESC);

    CREATE TABLE IF NOT EXISTS lesson_plan_cache (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        tema TEXT NOT NULL,
        publico_alvo TEXT NOT NULL,
        duracao TEXT NOT NULL,
        materiais_disponiveis TEXT NOT NULL,
        generated_plan_json TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE (tema, publico_alvo, duracao, materiais_disponiveis)
    );
    `
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Cache methods
func (s *SQLiteStore) LookupCache(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	return s.cache.lookup(ctx, key)
}

func (s *SQLiteStore) InsertCache(ctx context.Context, entry *CacheEntry) error {
	return s.cache.insert(ctx, entry)
}

// Lesson plan methods
func (s *SQLiteStore) InsertLessonPlan(ctx context.Context, owner Owner, plan *LessonPlan) (*LessonPlan, error) {
	p := prepareLessonPlan(owner, plan)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO planos_de_aula ("+lessonPlanColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Tema, p.PublicoAlvo, p.Duracao, p.Materiais, string(p.PlanoJSON), p.UserID, p.DataGeracao)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lesson plan: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListLessonPlans(ctx context.Context, owner Owner) ([]LessonPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+lessonPlanColumns+" FROM planos_de_aula WHERE user_id = ? ORDER BY data_geracao DESC",
		owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson plans: %w", err)
	}
	defer rows.Close()

	plans := []LessonPlan{}
	for rows.Next() {
		p, err := scanLessonPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson plan row: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) GetLessonPlan(ctx context.Context, owner Owner, id string) (*LessonPlan, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+lessonPlanColumns+" FROM planos_de_aula WHERE id = ? AND user_id = ?",
		id, owner.UserID)
	p, err := scanLessonPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lesson plan: %w", err)
	}
	return p, nil
}

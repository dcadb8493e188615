package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lsguilherme/desafio-escribo-2/internal/store/migrations"
	"github.com/pressly/goose/v3"
)

// PostgresStore writes owned lesson plans through a transaction that
// assumes the caller's role and claims, so row-level security applies.
// The shared cache goes through serviceDB, which bypasses those policies.
type PostgresStore struct {
	db        *sql.DB
	serviceDB *sql.DB
	cache     *cacheRepo
}

func NewPostgresStore(dsn, serviceDSN string) (*PostgresStore, error) {
	db, err := openPostgres(dsn)
	if err != nil {
		return nil, err
	}

	serviceDB := db
	if serviceDSN != "" && serviceDSN != dsn {
		serviceDB, err = openPostgres(serviceDSN)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("service connection: %w", err)
		}
	}

	return NewPostgresStoreFromDB(db, serviceDB), nil
}

// NewPostgresStoreFromDB wraps already opened connections.
func NewPostgresStoreFromDB(db, serviceDB *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:        db,
		serviceDB: serviceDB,
		cache:     &cacheRepo{db: serviceDB, sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)},
	}
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if s.serviceDB != s.db {
		err = errors.Join(err, s.serviceDB.Close())
	}
	return err
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations over the service connection.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.serviceDB, ".")
}

func (s *PostgresStore) LookupCache(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	return s.cache.lookup(ctx, key)
}

func (s *PostgresStore) InsertCache(ctx context.Context, entry *CacheEntry) error {
	return s.cache.insert(ctx, entry)
}

// withOwnerSession runs fn in a transaction that carries the owner's claims
// and role for the rest of the transaction only.
func (s *PostgresStore) withOwnerSession(ctx context.Context, owner Owner, fn func(ctx context.Context, tx DBTX) error) error {
	role := owner.Role
	if role == "" {
		role = "authenticated"
	}
	claims, err := json.Marshal(map[string]string{"sub": owner.UserID, "role": role})
	if err != nil {
		return fmt.Errorf("failed to encode claims: %w", err)
	}

	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			"SELECT set_config('request.jwt.claims', $1, true), set_config('request.jwt.claim.sub', $2, true)",
			string(claims), owner.UserID); err != nil {
			return fmt.Errorf("failed to set session claims: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "SET LOCAL ROLE "+pgx.Identifier{role}.Sanitize()); err != nil {
			return fmt.Errorf("failed to assume role %s: %w", role, err)
		}
		return fn(ctx, tx)
	})
}

func (s *PostgresStore) InsertLessonPlan(ctx context.Context, owner Owner, plan *LessonPlan) (*LessonPlan, error) {
	p := prepareLessonPlan(owner, plan)

	err := s.withOwnerSession(ctx, owner, func(ctx context.Context, tx DBTX) error {
		query :=
			`INSERT INTO planos_de_aula (` + lessonPlanColumns + `)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := tx.ExecContext(ctx, query,
			p.ID, p.Tema, p.PublicoAlvo, p.Duracao, p.Materiais, string(p.PlanoJSON), p.UserID, p.DataGeracao)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert lesson plan: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListLessonPlans(ctx context.Context, owner Owner) ([]LessonPlan, error) {
	plans := []LessonPlan{}
	err := s.withOwnerSession(ctx, owner, func(ctx context.Context, tx DBTX) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+lessonPlanColumns+` FROM planos_de_aula
			 WHERE user_id = $1
			 ORDER BY data_geracao DESC`,
			owner.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanLessonPlan(rows)
			if err != nil {
				return err
			}
			plans = append(plans, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson plans: %w", err)
	}
	return plans, nil
}

func (s *PostgresStore) GetLessonPlan(ctx context.Context, owner Owner, id string) (*LessonPlan, error) {
	var plan *LessonPlan
	err := s.withOwnerSession(ctx, owner, func(ctx context.Context, tx DBTX) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+lessonPlanColumns+` FROM planos_de_aula
			 WHERE id = $1 AND user_id = $2`,
			id, owner.UserID)
		var err error
		plan, err = scanLessonPlan(row)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lesson plan: %w", err)
	}
	return plan, nil
}

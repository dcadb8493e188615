// Package store persists owned lesson plans and the shared generation cache.
package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// Store is implemented by SQLiteStore (local development) and PostgresStore.
type Store interface {
	// LookupCache returns the first entry matching key exactly, or nil.
	LookupCache(ctx context.Context, key CacheKey) (*CacheEntry, error)
	// InsertCache stores a generated plan under key. An existing entry for
	// the same key is kept.
	InsertCache(ctx context.Context, entry *CacheEntry) error

	InsertLessonPlan(ctx context.Context, owner Owner, plan *LessonPlan) (*LessonPlan, error)
	ListLessonPlans(ctx context.Context, owner Owner) ([]LessonPlan, error)
	GetLessonPlan(ctx context.Context, owner Owner, id string) (*LessonPlan, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open picks the implementation for driver ("sqlite" or "postgres").
// serviceDSN is the elevated connection used for the shared cache table.
func Open(driver, dsn, serviceDSN string) (Store, error) {
	switch driver {
	case "sqlite":
		s, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(dsn, serviceDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "planos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

var fotossintese = CacheKey{
	Tema:        "Fotossíntese",
	PublicoAlvo: "6º ano",
	Duracao:     "Indefinida",
	Materiais:   "Não informado",
}

func TestSQLiteStore_CacheMissThenHit(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	got, err := s.LookupCache(ctx, fotossintese)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache must miss")

	plan := json.RawMessage(`{"titulo_plano":"Luz e vida"}`)
	require.NoError(t, s.InsertCache(ctx, &CacheEntry{CacheKey: fotossintese, GeneratedPlanJSON: plan}))

	got, err = s.LookupCache(ctx, fotossintese)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fotossintese, got.CacheKey)
	assert.JSONEq(t, string(plan), string(got.GeneratedPlanJSON))
}

func TestSQLiteStore_CacheLookupIsExactAndCaseSensitive(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertCache(ctx, &CacheEntry{CacheKey: fotossintese, GeneratedPlanJSON: json.RawMessage(`{}`)}))

	variants := []CacheKey{
		{Tema: "fotossíntese", PublicoAlvo: "6º ano", Duracao: "Indefinida", Materiais: "Não informado"},
		{Tema: "Fotossíntese ", PublicoAlvo: "6º ano", Duracao: "Indefinida", Materiais: "Não informado"},
		{Tema: "Fotossíntese", PublicoAlvo: "6º ano", Duracao: "50 minutos", Materiais: "Não informado"},
		{Tema: "Fotossíntese", PublicoAlvo: "6º ano", Duracao: "Indefinida", Materiais: "Lupa"},
	}
	for _, k := range variants {
		got, err := s.LookupCache(ctx, k)
		require.NoError(t, err)
		assert.Nil(t, got, "key %+v must not match", k)
	}
}

func TestSQLiteStore_InsertCache_FirstWriterWins(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCache(ctx, &CacheEntry{CacheKey: fotossintese, GeneratedPlanJSON: json.RawMessage(`{"v":1}`)}))
	require.NoError(t, s.InsertCache(ctx, &CacheEntry{CacheKey: fotossintese, GeneratedPlanJSON: json.RawMessage(`{"v":2}`)}))

	got, err := s.LookupCache(ctx, fotossintese)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got.GeneratedPlanJSON))
}

func TestSQLiteStore_InsertLessonPlan_PreservesRawOptionalFields(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	owner := Owner{UserID: "u-1"}

	created, err := s.InsertLessonPlan(ctx, owner, &LessonPlan{
		Tema:        "Fotossíntese",
		PublicoAlvo: "6º ano",
		PlanoJSON:   json.RawMessage(`{"titulo_plano":"x"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u-1", created.UserID)
	assert.Nil(t, created.Duracao)
	assert.Nil(t, created.Materiais)
	assert.WithinDuration(t, time.Now(), created.DataGeracao, time.Minute)

	got, err := s.GetLessonPlan(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Nil(t, got.Duracao)
	assert.Nil(t, got.Materiais)
	assert.JSONEq(t, `{"titulo_plano":"x"}`, string(got.PlanoJSON))
}

func TestSQLiteStore_OwnerScoping(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice := Owner{UserID: "alice"}
	bob := Owner{UserID: "bob"}

	first, err := s.InsertLessonPlan(ctx, alice, &LessonPlan{Tema: "A", PublicoAlvo: "1º ano", Duracao: strPtr("50 min"), PlanoJSON: json.RawMessage(`{}`)})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := s.InsertLessonPlan(ctx, alice, &LessonPlan{Tema: "B", PublicoAlvo: "2º ano", Materiais: strPtr("Lousa"), PlanoJSON: json.RawMessage(`{}`)})
	require.NoError(t, err)
	_, err = s.InsertLessonPlan(ctx, bob, &LessonPlan{Tema: "C", PublicoAlvo: "3º ano", PlanoJSON: json.RawMessage(`{}`)})
	require.NoError(t, err)

	plans, err := s.ListLessonPlans(ctx, alice)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, second.ID, plans[0].ID, "newest first")
	assert.Equal(t, first.ID, plans[1].ID)
	require.NotNil(t, plans[1].Duracao)
	assert.Equal(t, "50 min", *plans[1].Duracao)
	require.NotNil(t, plans[0].Materiais)
	assert.Equal(t, "Lousa", *plans[0].Materiais)

	_, err = s.GetLessonPlan(ctx, bob, first.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "other users' plans are invisible")
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	s := newSQLiteStore(t)

	plans, err := s.ListLessonPlans(context.Background(), Owner{UserID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Empty(t, plans)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", "dsn")
	require.Error(t, err)
}

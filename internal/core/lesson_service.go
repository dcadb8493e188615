package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lsguilherme/desafio-escribo-2/internal/auth"
	"github.com/lsguilherme/desafio-escribo-2/internal/logging"
	"github.com/lsguilherme/desafio-escribo-2/internal/store"
)

// CreateRequest is what the professor submits. Duracao and Materiais are optional.
type CreateRequest struct {
	Tema        string  `json:"tema"`
	PublicoAlvo string  `json:"publico_alvo"`
	Duracao     *string `json:"duracao"`
	Materiais   *string `json:"materiais_disponiveis"`
}

func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Tema) == "" || strings.TrimSpace(r.PublicoAlvo) == "" {
		return fmt.Errorf("%w: tema and publico_alvo are required", ErrValidation)
	}
	return nil
}

// NormalizeKey builds the cache key, substituting sentinels for absent or
// empty optional fields. No other normalization happens.
func NormalizeKey(r CreateRequest) store.CacheKey {
	return store.CacheKey{
		Tema:        r.Tema,
		PublicoAlvo: r.PublicoAlvo,
		Duracao:     valueOr(r.Duracao, DuracaoSentinel),
		Materiais:   valueOr(r.Materiais, MateriaisSentinel),
	}
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

type CreateResult struct {
	Plan     *store.LessonPlan
	CacheHit bool
}

// Generator produces a validated plan for a key. PlanGenerator implements it.
type Generator interface {
	Generate(ctx context.Context, key store.CacheKey) (json.RawMessage, error)
}

type LessonPlanService struct {
	store             store.Store
	generator         Generator
	verifier          auth.Verifier
	logger            logging.Logger
	cacheWriteTimeout time.Duration

	pending sync.WaitGroup
}

func NewLessonPlanService(st store.Store, gen Generator, verifier auth.Verifier, logger logging.Logger, cacheWriteTimeout time.Duration) *LessonPlanService {
	return &LessonPlanService{
		store:             st,
		generator:         gen,
		verifier:          verifier,
		logger:            logger,
		cacheWriteTimeout: cacheWriteTimeout,
	}
}

// Authenticate resolves a bearer token to the caller.
func (s *LessonPlanService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if id == nil || id.UserID == "" {
		return nil, ErrInvalidCredential
	}
	return id, nil
}

// Create returns a new owned record for req. On a cache hit the cached plan
// is reused and the model is not called. On a miss the generated plan is
// written to the cache in the background; that write is never awaited and
// its outcome never reaches the caller.
func (s *LessonPlanService) Create(ctx context.Context, id *auth.Identity, req CreateRequest) (*CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := NormalizeKey(req)
	log := s.logger.With("user_id", id.UserID, "tema", key.Tema, "publico_alvo", key.PublicoAlvo)

	cached, err := s.store.LookupCache(ctx, key)
	if err != nil {
		// a broken cache read degrades to a miss
		log.Warn(ctx, "cache lookup failed", "error", err)
	}

	if cached != nil {
		log.Info(ctx, "cache hit", "cache_id", cached.ID)
		plan, err := s.insertOwned(ctx, id, req, cached.GeneratedPlanJSON)
		if err != nil {
			log.Error(ctx, "failed to save plan from cache", "error", err)
			return nil, err
		}
		return &CreateResult{Plan: plan, CacheHit: true}, nil
	}

	log.Info(ctx, "cache miss, generating plan")
	started := time.Now()
	generated, err := s.generator.Generate(ctx, key)
	if err != nil {
		log.Error(ctx, "plan generation failed", "error", err, "elapsed", time.Since(started))
		return nil, err
	}
	log.Info(ctx, "plan generated", "elapsed", time.Since(started))

	s.writeCacheDetached(ctx, key, generated)

	plan, err := s.insertOwned(ctx, id, req, generated)
	if err != nil {
		log.Error(ctx, "failed to save generated plan", "error", err)
		return nil, err
	}
	return &CreateResult{Plan: plan}, nil
}

func (s *LessonPlanService) insertOwned(ctx context.Context, id *auth.Identity, req CreateRequest, plan json.RawMessage) (*store.LessonPlan, error) {
	saved, err := s.store.InsertLessonPlan(ctx, ownerOf(id), &store.LessonPlan{
		Tema:        req.Tema,
		PublicoAlvo: req.PublicoAlvo,
		Duracao:     req.Duracao,
		Materiais:   req.Materiais,
		PlanoJSON:   plan,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return saved, nil
}

// writeCacheDetached stores the generated plan on its own goroutine, detached
// from the request's cancellation and bounded by cacheWriteTimeout.
func (s *LessonPlanService) writeCacheDetached(ctx context.Context, key store.CacheKey, plan json.RawMessage) {
	bg := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(bg, s.cacheWriteTimeout)
		defer cancel()

		if err := s.store.InsertCache(ctx, &store.CacheEntry{CacheKey: key, GeneratedPlanJSON: plan}); err != nil {
			s.logger.Error(ctx, "cache write failed", "tema", key.Tema, "publico_alvo", key.PublicoAlvo, "error", err)
			return
		}
		s.logger.Debug(ctx, "cache entry written", "tema", key.Tema, "publico_alvo", key.PublicoAlvo)
	}()
}

// Wait blocks until every detached cache write has finished. Called on
// shutdown.
func (s *LessonPlanService) Wait() {
	s.pending.Wait()
}

func (s *LessonPlanService) List(ctx context.Context, id *auth.Identity) ([]store.LessonPlan, error) {
	plans, err := s.store.ListLessonPlans(ctx, ownerOf(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return plans, nil
}

func (s *LessonPlanService) Get(ctx context.Context, id *auth.Identity, planID string) (*store.LessonPlan, error) {
	plan, err := s.store.GetLessonPlan(ctx, ownerOf(id), planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return plan, nil
}

func ownerOf(id *auth.Identity) store.Owner {
	return store.Owner{UserID: id.UserID, Role: id.Role}
}

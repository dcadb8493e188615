package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lsguilherme/desafio-escribo-2/internal/auth"
	"github.com/lsguilherme/desafio-escribo-2/internal/core"
	"github.com/lsguilherme/desafio-escribo-2/internal/logging"
	"github.com/lsguilherme/desafio-escribo-2/internal/store"
)

const (
	cacheStatusHeader = "X-Cache-Status"
	maxBodyBytes      = 64 << 10

	msgMethodNotAllowed = "Método não permitido."
	msgConfig           = "Erro de configuração. Variáveis de ambiente faltando."
	msgUnauthorized     = "Não autorizado. Apenas usuários autenticados podem gerar e salvar planos."
	msgInvalidToken     = "Token de autenticação inválido ou expirado."
	msgEmptyBody        = "Body da requisição está vazio."
	msgInvalidJSON      = "JSON inválido: "
	msgRequiredFields   = "Tema e Público Alvo são obrigatórios."
	msgInvalidFormat    = "A IA gerou um formato inválido. Tente novamente."
	msgGeneration       = "Não foi possível gerar o plano agora. Tente novamente."
	msgPersistence      = "Erro ao salvar o plano: "
	msgNotFound         = "Plano não encontrado."
	msgInternal         = "Erro interno no servidor."
)

// PlanService is what the handlers need from core.LessonPlanService.
type PlanService interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	Create(ctx context.Context, id *auth.Identity, req core.CreateRequest) (*core.CreateResult, error)
	List(ctx context.Context, id *auth.Identity) ([]store.LessonPlan, error)
	Get(ctx context.Context, id *auth.Identity, planID string) (*store.LessonPlan, error)
}

type PlanHandler struct {
	service   PlanService
	logger    logging.Logger
	configErr error
}

// NewPlanHandler builds the handlers. A non-nil configErr makes every plan
// endpoint answer 500 without touching service, which may then be nil.
func NewPlanHandler(service PlanService, logger logging.Logger, configErr error) *PlanHandler {
	return &PlanHandler{service: service, logger: logger, configErr: configErr}
}

type identityKey struct{}

func identityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey{}).(*auth.Identity)
	return id
}

// AuthMiddleware resolves the bearer token and stores the caller's identity
// in the request context.
func (h *PlanHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.configErr != nil {
			writeError(w, http.StatusInternalServerError, msgConfig)
			return
		}
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		id, err := h.service.Authenticate(r.Context(), token)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// CreatePlanHandler checks in this order: configuration, bearer presence,
// body, required fields, then the token itself.
func (h *PlanHandler) CreatePlanHandler(w http.ResponseWriter, r *http.Request) {
	if h.configErr != nil {
		h.logger.Error(r.Context(), "rejecting request, server misconfigured", "error", h.configErr)
		writeError(w, http.StatusInternalServerError, msgConfig)
		return
	}

	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON+err.Error())
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, msgEmptyBody)
		return
	}

	var req core.CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, msgRequiredFields)
		return
	}

	id, err := h.service.Authenticate(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.service.Create(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if res.CacheHit {
		w.Header().Set(cacheStatusHeader, "HIT")
	}
	writeJSON(w, http.StatusOK, res.Plan)
}

func (h *PlanHandler) ListPlansHandler(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if plans == nil {
		plans = []store.LessonPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PlanHandler) GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.Get(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "planID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PlanHandler) MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func (h *PlanHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, core.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, core.ErrConfig):
		writeError(w, http.StatusInternalServerError, msgConfig)
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, msgRequiredFields)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, core.ErrGenerationFormat):
		writeError(w, http.StatusInternalServerError, msgInvalidFormat)
	case errors.Is(err, core.ErrGenerationService):
		writeError(w, http.StatusInternalServerError, msgGeneration)
	case errors.Is(err, core.ErrPersistence):
		writeError(w, http.StatusInternalServerError, msgPersistence+persistenceDetail(err))
	default:
		h.logger.Error(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// persistenceDetail strips the sentinel prefix so only the store message is
// shown to the caller.
func persistenceDetail(err error) string {
	return strings.TrimPrefix(err.Error(), core.ErrPersistence.Error()+": ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

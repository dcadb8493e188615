package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the plan endpoints. allowedOrigin is the single browser
// origin allowed to call the API.
func NewRouter(h *PlanHandler, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		ExposedHeaders: []string{cacheStatusHeader},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(h.MethodNotAllowedHandler)

	// Preflights without an Origin header skip the CORS middleware.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/planos", h.CreatePlanHandler)
		r.Options("/planos", preflight)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/planos", h.ListPlansHandler)
			r.Get("/planos/{planID}", h.GetPlanHandler)
		})
	})

	// Path the web client used before the /api routes existed.
	r.Post("/functions/v1/criar-plano-de-aula", h.CreatePlanHandler)
	r.Options("/functions/v1/criar-plano-de-aula", preflight)

	return r
}

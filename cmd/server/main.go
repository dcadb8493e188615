package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lsguilherme/desafio-escribo-2/internal/api"
	"github.com/lsguilherme/desafio-escribo-2/internal/auth"
	"github.com/lsguilherme/desafio-escribo-2/internal/config"
	"github.com/lsguilherme/desafio-escribo-2/internal/core"
	"github.com/lsguilherme/desafio-escribo-2/internal/logging"
	"github.com/lsguilherme/desafio-escribo-2/internal/store"
)

func main() {
	// Command line flag for schema setup
	migrateFlag := flag.Bool("migrate", false, "Apply database migrations and exit")
	flag.Parse()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	if *migrateFlag {
		if err := migrate(ctx, cfg); err != nil {
			logger.Error(ctx, "migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "migrations applied", "driver", cfg.DatabaseDriver)
		return
	}

	var (
		service   *core.LessonPlanService
		configErr = cfg.Validate()
	)
	if configErr == nil {
		var cleanup func()
		service, cleanup, configErr = buildService(ctx, cfg, logger)
		if cleanup != nil {
			defer cleanup()
		}
	}
	if configErr != nil {
		// Keep serving so clients get a clear 500 instead of a refused connection.
		logger.Warn(ctx, "plan generation disabled", "error", configErr)
		configErr = fmt.Errorf("%w: %v", core.ErrConfig, configErr)
	}

	var planService api.PlanService
	if service != nil {
		planService = service
	}
	handler := api.NewPlanHandler(planService, logger, configErr)
	router := api.NewRouter(handler, cfg.CORSAllowedOrigin)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second, // generation dominates
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting server", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "could not listen", "addr", serverAddr, "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", "error", err)
	}
	if service != nil {
		service.Wait()
	}

	logger.Info(ctx, "server exiting gracefully")
}

// buildService wires store, model and verifier. The returned cleanup closes
// whatever was opened, also on error.
func buildService(ctx context.Context, cfg *config.Config, logger logging.Logger) (*core.LessonPlanService, func(), error) {
	dbStore, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.ServiceDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerationTemperature)
	if err != nil {
		dbStore.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := llmService.Close(); err != nil {
			logger.Warn(ctx, "closing model client", "error", err)
		}
		if err := dbStore.Close(); err != nil {
			logger.Warn(ctx, "closing database", "error", err)
		}
	}

	var verifier auth.Verifier
	if cfg.AuthJWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.AuthJWTSecret)
	} else {
		verifier = auth.NewRemoteVerifier(cfg.AuthURL, cfg.AuthAPIKey, 10*time.Second)
	}

	generator := core.NewPlanGenerator(llmService, cfg.GenerationTimeout)
	return core.NewLessonPlanService(dbStore, generator, verifier, logger, cfg.CacheWriteTimeout), cleanup, nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	dbStore, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.ServiceDatabaseURL)
	if err != nil {
		return err
	}
	defer dbStore.Close()
	return dbStore.Migrate(ctx)
}

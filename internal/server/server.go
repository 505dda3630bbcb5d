// Package server is the wiring layer: it assembles the database, the
// services, the handlers, and the route table, and owns the HTTP
// listener's lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads config and builds a logger
//	server.New() creates: sqlite.DB → services → handlers → routes
//	server.Start() runs the listener until SIGINT/SIGTERM
//
// This is the "composition root" pattern — every dependency is wired in
// one place instead of scattered across the codebase. Handlers never
// touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/auth"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/config"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/handler"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/llm"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/middleware"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/ratelimit"
	sqliteRepo "github.com/Vaishh-Aryaa/CodeInsight/internal/repository/sqlite"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown — skipping that can
// leave the SQLite WAL unflushed.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles a Server from configuration: database, token and
// password services, LLM providers, rate limiter, services, handlers,
// routes. providers may be passed explicitly (tests do this); when nil,
// they are built from the configured API keys.
func New(cfg *config.Config, logger *slog.Logger, providers []llm.Provider) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if providers == nil {
		providers = buildProviders(cfg)
	}

	if err := s.setupRoutes(providers); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// buildProviders constructs the ordered provider list from config:
// OpenAI first, Gemini as the fallback. A provider without an API key is
// skipped rather than constructed broken.
func buildProviders(cfg *config.Config) []llm.Provider {
	var providers []llm.Provider
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""))
	}
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, llm.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, ""))
	}
	return providers
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	GET    /health                        → liveness probe (no auth)
//	POST   /api/auth/signup               → create account
//	POST   /api/auth/login                → authenticate
//	POST   /api/auth/forgot-password      → issue reset token
//	POST   /api/auth/reset-password       → consume reset token
//	GET    /api/auth/me                   → current account (auth)
//	POST   /api/explain                   → explain code (auth + rate limit)
//	POST   /api/threads                   → create thread (auth)
//	GET    /api/threads                   → list threads (auth)
//	GET    /api/threads/{id}              → get thread with messages (auth)
//	POST   /api/threads/{id}/messages     → append a message directly (auth)
//	PUT    /api/threads/{id}              → rename thread (auth)
//	DELETE /api/threads/{id}              → delete thread (auth)
//
// MIDDLEWARE ORDER MATTERS: RequestID and RealIP run first so the logger
// can use them; Recoverer turns panics into 500s; RequireAuth runs only
// inside the protected group, and the rate limiter runs after it so the
// limit is keyed by user ID rather than by address.
func (s *Server) setupRoutes(providers []llm.Provider) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	limiter, err := buildLimiter(s.cfg)
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}

	authService := service.NewAuthService(s.db, auth.NewPasswordService(), tokens, s.logger)
	threadService := service.NewThreadService(s.db, s.logger)
	explainService := service.NewExplainService(providers, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	threadHandler := handler.NewThreadHandler(threadService, s.logger)
	explainHandler := handler.NewExplainHandler(explainService, threadService, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/forgot-password", authHandler.HandleForgotPassword)
			r.Post("/reset-password", authHandler.HandleResetPassword)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)

			r.With(middleware.RateLimit(limiter)).Post("/explain", explainHandler.HandleExplain)

			r.Post("/threads", threadHandler.HandleCreate)
			r.Get("/threads", threadHandler.HandleList)
			r.Get("/threads/{id}", threadHandler.HandleGet)
			r.Post("/threads/{id}/messages", threadHandler.HandleAppendMessage)
			r.Put("/threads/{id}", threadHandler.HandleRename)
			r.Delete("/threads/{id}", threadHandler.HandleDelete)
		})
	})

	return nil
}

// buildLimiter picks Redis when an address is configured (shared quota
// across replicas), in-memory otherwise.
func buildLimiter(cfg *config.Config) (*ratelimit.FixedWindowLimiter, error) {
	if cfg.RedisAddr != "" {
		return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.RateLimit, cfg.RateWindow)
	}
	return ratelimit.NewMemoryFixedWindowLimiter(cfg.RateLimit, cfg.RateWindow)
}

// Handler exposes the assembled router, mainly for tests that want to
// drive the full middleware chain with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, wait up to 30s for in-flight
// requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

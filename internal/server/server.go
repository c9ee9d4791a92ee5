// Package server wires the backend together and runs the HTTP server.
//
// COMPOSITION ROOT:
// New is the only place that knows every concrete type:
//
//	sqlite.DB ─┐
//	           ├─ AccountService ── AccountHandler ─┐
//	auth.* ────┘                                    ├─ chi router
//	diagnosis.Diagnoser ─ DiagnosisService ─ AnalyzeHandler ─┘
//
// Everything below this package depends on interfaces or on the layer
// directly beneath it.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/symvora/internal/auth"
	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/handler"
	"github.com/sakif/symvora/internal/middleware"
	sqliteRepo "github.com/sakif/symvora/internal/repository/sqlite"
	"github.com/sakif/symvora/internal/service"
)

// shutdownTimeout is how long in-flight requests get after a stop signal.
// It exceeds the default diagnosis timeout so a running analysis can finish.
const shutdownTimeout = 35 * time.Second

// Config holds what the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration

	// PasswordCost overrides the bcrypt cost. Zero means auth.DefaultCost.
	PasswordCost int
}

// Server owns the router and the database.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router. diagnoser answers
// POST /api/analyze.
func New(cfg Config, logger *slog.Logger, diagnoser diagnosis.Diagnoser) (*Server, error) {
	if diagnoser == nil {
		return nil, errors.New("server: a diagnoser is required")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		var err error
		if secret, err = randomSecret(); err != nil {
			return nil, err
		}
		logger.Warn("JWT_SECRET not set, using a random secret; sessions end when the server restarts")
	}
	tokens, err := auth.NewTokenService(secret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	passwords := auth.NewPasswordService()
	if cfg.PasswordCost > 0 {
		passwords = auth.NewPasswordServiceWithCost(cfg.PasswordCost)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	accounts := service.NewAccountService(db, tokens, passwords, logger)
	analysis := service.NewDiagnosisService(diagnoser, logger)
	s.routes(tokens, handler.NewAccountHandler(accounts, logger), handler.NewAnalyzeHandler(analysis, logger))

	return s, nil
}

// routes registers middleware and endpoints.
//
//	GET  /healthz
//	POST /api/auth/signup
//	POST /api/auth/login
//	POST /api/auth/logout
//	GET  /api/me            (auth)
//	PUT  /api/me/name       (auth)
//	PUT  /api/me/password   (auth)
//	POST /api/analyze       (auth)
//
// RequestID runs first so the logger can print it; Recoverer runs inside
// the logger so a panic is still logged as a 500.
func (s *Server) routes(tokens *auth.TokenService, accounts *handler.AccountHandler, analyze *handler.AnalyzeHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", handler.HandleHealth(s.db, s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", accounts.HandleSignUp)
		r.Post("/auth/login", accounts.HandleLogin)
		r.Post("/auth/logout", accounts.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", accounts.HandleMe)
			r.Put("/me/name", accounts.HandleUpdateName)
			r.Put("/me/password", accounts.HandleUpdatePassword)
			r.Post("/analyze", analyze.HandleAnalyze)
		})
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// closes the database.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Long enough for a model call (DIAGNOSIS_TIMEOUT defaults to 30s).
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("server: generating JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
